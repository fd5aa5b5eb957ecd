package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/pandodao/generic"
)

func GenerateKeypair() (solana.PrivateKey, error) {
	return solana.NewRandomPrivateKey()
}

// SaveKeypair writes key as a JSON array of its 64 bytes, the layout
// solana-keygen uses. Existing files are never overwritten.
func SaveKeypair(path string, key solana.PrivateKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	content, err := json.Marshal(generic.MapSlice([]byte(key), func(b byte) int {
		return int(b)
	}))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("save keypair: %w", err)
	}
	defer f.Close()

	_, err = f.Write(content)
	return err
}

func LoadKeypair(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}

	return key, nil
}
