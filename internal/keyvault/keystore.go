package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/scrypt"
)

// EncryptedSeedJSON 遵循 Ethereum Keystore V3 的结构风格，
// 但存储的是设备的助记词 (Mnemonic) 而不是单个私钥
type EncryptedSeedJSON struct {
	Crypto  CryptoJSON `json:"crypto"`
	Version int        `json:"version"` // 3
}

type CryptoJSON struct {
	Cipher       string       `json:"cipher"` // "aes-256-gcm"
	CipherText   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	KDF          string       `json:"kdf"` // "scrypt"
	KDFParams    KDFParams    `json:"kdfparams"`
}

type CipherParams struct {
	IV string `json:"iv"` // Hex string, GCM nonce
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

const (
	scryptN     = 262144
	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32
)

var ErrDecrypt = errors.New("could not decrypt seed (wrong password?)")

// EncryptMnemonic 将助记词使用密码加密为 JSON 结构
func EncryptMnemonic(mnemonic, password string) (*EncryptedSeedJSON, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	cipherText := gcm.Seal(nil, nonce, []byte(mnemonic), nil)

	return &EncryptedSeedJSON{
		Crypto: CryptoJSON{
			Cipher:       "aes-256-gcm",
			CipherText:   hex.EncodeToString(cipherText),
			CipherParams: CipherParams{IV: hex.EncodeToString(nonce)},
			KDF:          "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				Salt:  hex.EncodeToString(salt),
			},
		},
		Version: 3,
	}, nil
}

// DecryptMnemonic 使用密码解密出助记词
func DecryptMnemonic(key *EncryptedSeedJSON, password string) (string, error) {
	if key.Crypto.Cipher != "aes-256-gcm" || key.Crypto.KDF != "scrypt" {
		return "", fmt.Errorf("unsupported keystore parameters: %s/%s", key.Crypto.Cipher, key.Crypto.KDF)
	}

	salt, err := hex.DecodeString(key.Crypto.KDFParams.Salt)
	if err != nil {
		return "", err
	}
	nonce, err := hex.DecodeString(key.Crypto.CipherParams.IV)
	if err != nil {
		return "", err
	}
	cipherText, err := hex.DecodeString(key.Crypto.CipherText)
	if err != nil {
		return "", err
	}

	p := key.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plain, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// SaveToFile 将加密后的 Keystore 写入文件
func SaveToFile(key *EncryptedSeedJSON, path string) error {
	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadFromFile 从文件读取 Keystore
func LoadFromFile(path string) (*EncryptedSeedJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var key EncryptedSeedJSON
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, err
	}
	return &key, nil
}
