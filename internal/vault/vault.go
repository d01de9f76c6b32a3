// Package vault stores site credentials encrypted at rest.
//
// The file format is a small header (magic + version) followed by a random
// scrypt salt, an AES-GCM nonce, and the ciphertext of a JSON payload. The
// key is derived from the master password with scrypt; a wrong password
// surfaces as [ErrWrongMasterPassword], distinct from a corrupt file.
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLength  = 16
	keyLength   = 32
	fileMode    = 0600
	scryptN     = 1 << 15
	scryptR     = 8
	scryptP     = 1
	formatMagic = "LCV"
	formatVer   = byte(1)
)

var (
	ErrNoCredentials       = errors.New("vault: no credential file")
	ErrWrongMasterPassword = errors.New("vault: wrong master password")
	ErrVaultCorrupted      = errors.New("vault: credential file is corrupted")
	ErrEmptyMasterPassword = errors.New("vault: master password must not be empty")
)

// Credentials are the site secrets kept encrypted on disk.
type Credentials struct {
	UserID           string `json:"user_id"`
	Password         string `json:"password"`
	RechargePassword string `json:"recharge_password,omitempty"`
}

// Validate checks that the credentials can be used for a login attempt.
func (c *Credentials) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("vault: user id must not be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("vault: password must not be empty")
	}
	return nil
}

// Vault reads and writes one encrypted credential file.
type Vault struct {
	path string
}

// New creates a Vault backed by the file at path.
func New(path string) *Vault {
	return &Vault{path: path}
}

// Path returns the credential file location.
func (v *Vault) Path() string { return v.path }

// Exists reports whether a credential file is present.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Save encrypts credentials with the master password and writes the file.
func (v *Vault) Save(creds *Credentials, masterPassword string) error {
	if masterPassword == "" {
		return ErrEmptyMasterPassword
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("vault: failed to encode credentials: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("vault: failed to generate salt: %w", err)
	}

	gcm, err := newCipher(masterPassword, salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("vault: failed to generate nonce: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(formatMagic)
	buf.WriteByte(formatVer)
	buf.Write(salt)
	buf.Write(nonce)
	buf.Write(gcm.Seal(nil, nonce, plaintext, nil))

	if err := os.WriteFile(v.path, buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("vault: failed to write credential file: %w", err)
	}

	return nil
}

// Load decrypts the credential file with the master password.
func (v *Vault) Load(masterPassword string) (*Credentials, error) {
	if masterPassword == "" {
		return nil, ErrEmptyMasterPassword
	}

	data, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("vault: failed to read credential file: %w", err)
	}

	header := len(formatMagic) + 1
	if len(data) < header+saltLength {
		return nil, ErrVaultCorrupted
	}
	if string(data[:len(formatMagic)]) != formatMagic || data[len(formatMagic)] != formatVer {
		return nil, ErrVaultCorrupted
	}

	salt := data[header : header+saltLength]
	gcm, err := newCipher(masterPassword, salt)
	if err != nil {
		return nil, err
	}

	rest := data[header+saltLength:]
	if len(rest) < gcm.NonceSize() {
		return nil, ErrVaultCorrupted
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// GCM authentication cannot tell a bad key from tampered data,
		// so a structurally valid file maps to a password failure.
		return nil, ErrWrongMasterPassword
	}

	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, ErrVaultCorrupted
	}

	return &creds, nil
}

// Delete removes the credential file.
func (v *Vault) Delete() error {
	if err := os.Remove(v.path); err != nil {
		if os.IsNotExist(err) {
			return ErrNoCredentials
		}
		return fmt.Errorf("vault: failed to delete credential file: %w", err)
	}
	return nil
}

func newCipher(masterPassword string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(masterPassword), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("vault: key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to create GCM: %w", err)
	}

	return gcm, nil
}
