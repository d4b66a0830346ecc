package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmailCodeHTML(t *testing.T) {
	html := EmailCodeHTML("a password reset", "123456", 5*time.Minute)
	assert.Contains(t, html, "You requested <b>a password reset</b>.")
	assert.Contains(t, html, ">123456</b>")
	assert.Contains(t, html, "expires in 5 minutes")
}
