package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestTransientStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{408, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
		{501, false},
		{505, false},
		{400, false},
		{403, false},
		{404, false},
		{410, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TransientStatus(tt.code), "status %d", tt.code)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"fdic throttled", &StatusError{URL: "https://api.fdic.gov/banks/institutions", StatusCode: 429}, ClassTransient},
		{"fdic gateway wrapped by adapter", eris.Wrap(&StatusError{URL: "https://api.fdic.gov/banks/institutions", StatusCode: 502}, "fdic: api search"), ClassTransient},
		{"retired ncua dataset", eris.Wrap(&StatusError{URL: "https://data.example.gov/resource/old.json", StatusCode: 410}, "ncua: search"), ClassPermanent},
		{"missing ncua dataset", &StatusError{URL: "https://data.example.gov/resource/x.json", StatusCode: 404}, ClassPermanent},
		{"tier timeout", eris.Wrap(context.DeadlineExceeded, "fdic: mirror search"), ClassTransient},
		{"body cut off", eris.Wrap(io.ErrUnexpectedEOF, "ncua: decode"), ClassTransient},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, ClassTransient},
		{"connection reset", eris.Wrap(syscall.ECONNRESET, "proxy: read"), ClassTransient},
		{"dns timeout", &net.DNSError{Name: "api.fdic.gov", IsTimeout: true}, ClassTransient},
		{"unknown host", &net.DNSError{Name: "retired.example.gov", IsNotFound: true}, ClassPermanent},
		{"malformed payload", eris.New("fdic: response has no data array"), ClassPermanent},
		{"caller cancelled", context.Canceled, ClassPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsTransient_Nil(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.Equal(t, ClassPermanent, Classify(nil))
}

func TestStatusError(t *testing.T) {
	err := &StatusError{URL: "https://banks.data.fdic.gov/api/institutions", StatusCode: 503}
	assert.Equal(t, "unexpected status 503 from https://banks.data.fdic.gov/api/institutions", err.Error())
	assert.True(t, err.Transient())

	var se *StatusError
	assert.True(t, errors.As(eris.Wrap(err, "fdic: mirror search"), &se))
	assert.Equal(t, 503, se.StatusCode)
}
