package auth

import (
	"fmt"
	"time"
)

// PasswordEncrypter turns a plaintext password into the wire encoding the
// login endpoint expects.
type PasswordEncrypter interface {
	Encrypt(password string) (string, error)
}

// PlainEncrypter emits the versioned plaintext envelope. The platform
// accepts it when no public-key handshake has happened.
type PlainEncrypter struct {
	// now is swappable for tests.
	now func() time.Time
}

func NewPlainEncrypter() *PlainEncrypter {
	return &PlainEncrypter{now: time.Now}
}

func (p *PlainEncrypter) Encrypt(password string) (string, error) {
	return fmt.Sprintf("#PWD_INSTAGRAM:0:%d:%s", p.now().Unix(), password), nil
}
