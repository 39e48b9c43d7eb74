// AngelaMos | 2026
// keys.go

package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

const keyIDLength = 16

var errKeyMismatch = errors.New("public key does not match private key")

// signingKeys is the ES256 key pair used for access tokens.
type signingKeys struct {
	private jwk.Key
	public  jwk.Key
	kid     string
}

func loadSigningKeys(privatePath, publicPath string) (*signingKeys, error) {
	private, err := readPEMKey(privatePath)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}

	public, err := private.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	kid, err := keyID(public)
	if err != nil {
		return nil, err
	}

	if publicPath != "" {
		if err := checkPublicKey(publicPath, kid); err != nil {
			return nil, err
		}
	}

	for _, k := range []jwk.Key{private, public} {
		if err := k.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
			return nil, fmt.Errorf("set algorithm: %w", err)
		}
		if err := k.Set(jwk.KeyIDKey, kid); err != nil {
			return nil, fmt.Errorf("set key id: %w", err)
		}
	}
	if err := public.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	return &signingKeys{private: private, public: public, kid: kid}, nil
}

func readPEMKey(path string) (jwk.Key, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	key, err := jwk.ParseKey(data, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return key, nil
}

// checkPublicKey skips a missing file so deployments may ship only the
// private key.
func checkPublicKey(path, kid string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	public, err := readPEMKey(path)
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}

	got, err := keyID(public)
	if err != nil {
		return err
	}
	if got != kid {
		return fmt.Errorf("%s: %w", path, errKeyMismatch)
	}
	return nil
}

// keyID is a prefix of the RFC 7638 thumbprint, so it stays stable across
// restarts and replicas sharing a key.
func keyID(key jwk.Key) (string, error) {
	sum, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sum)[:keyIDLength], nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM files.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	private, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import key: %w", err)
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	files := []struct {
		path string
		key  jwk.Key
		mode os.FileMode
	}{
		{privateKeyPath, private, 0o600},
		{publicKeyPath, public, 0o644},
	}
	for _, f := range files {
		data, err := jwk.Pem(f.key)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, data, f.mode); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return nil
}
