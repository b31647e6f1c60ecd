// Package config loads the session cookies used to fetch the schedule page.
//
// The cookie file holds the two values copied from a logged-in browser
// session. JSON is the default format; files ending in .toml are read as
// TOML:
//
//	{"serverid": "...", "JSESSIONID": "..."}
//
//	serverid = "..."
//	JSESSIONID = "..."
//
// Either value may be stored encrypted ("enc:..."); Encrypt rewrites a file
// that way and Resolve decrypts with the passphrase given at run time.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/pfrederiksen/thu-timetable/internal/crypto"
)

// Cookies are the session cookies the schedule server expects
type Cookies struct {
	ServerID   string `json:"serverid" toml:"serverid" validate:"required"`
	JSessionID string `json:"JSESSIONID" toml:"JSESSIONID" validate:"required"`
}

// Validate checks that both cookie values are present
func (c *Cookies) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid cookies: %w", err)
	}
	return nil
}

// Encrypted reports whether any value is stored encrypted
func (c *Cookies) Encrypted() bool {
	return crypto.IsEncrypted(c.ServerID) || crypto.IsEncrypted(c.JSessionID)
}

// Decrypt replaces encrypted values with their plaintext
func (c *Cookies) Decrypt(enc *crypto.Encryptor) error {
	serverID, err := enc.Decrypt("serverid", c.ServerID)
	if err != nil {
		return fmt.Errorf("decrypting serverid: %w", err)
	}
	sessionID, err := enc.Decrypt("JSESSIONID", c.JSessionID)
	if err != nil {
		return fmt.Errorf("decrypting JSESSIONID: %w", err)
	}
	c.ServerID, c.JSessionID = serverID, sessionID
	return nil
}

// Encrypt replaces plain values with their encrypted form
func (c *Cookies) Encrypt(enc *crypto.Encryptor) error {
	serverID, err := enc.Encrypt("serverid", c.ServerID)
	if err != nil {
		return fmt.Errorf("encrypting serverid: %w", err)
	}
	sessionID, err := enc.Encrypt("JSESSIONID", c.JSessionID)
	if err != nil {
		return fmt.Errorf("encrypting JSESSIONID: %w", err)
	}
	c.ServerID, c.JSessionID = serverID, sessionID
	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads cookies from a JSON or TOML file. Encrypted values are
// returned as stored.
func Load(path string) (*Cookies, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cookies Cookies
	if isTOML(path) {
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cookies); err != nil {
			return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing JSON config %s: %w", path, err)
	}

	if err := cookies.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cookies, nil
}

// Save writes cookies to a JSON or TOML file, chosen by extension like Load.
// The file is only readable by its owner.
func Save(path string, cookies *Cookies) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	var data []byte
	if isTOML(path) {
		data, err = toml.Marshal(cookies)
	} else {
		data, err = json.MarshalIndent(cookies, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve picks the cookies for a run: explicit values win, then the config
// file, decrypted with passphrase where needed. With neither, it returns nil
// and the page is requested without session cookies.
func Resolve(serverID, jsessionID, path, passphrase string) (*Cookies, error) {
	if serverID != "" && jsessionID != "" {
		cookies := &Cookies{ServerID: serverID, JSessionID: jsessionID}
		return cookies, cookies.Validate()
	}
	if path == "" {
		return nil, nil
	}

	cookies, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cookies.Decrypt(crypto.NewEncryptor(passphrase)); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cookies, nil
}
