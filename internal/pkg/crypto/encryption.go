// Package crypto 歸檔文件的密封與完整性校驗
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeySize AES-256 密鑰長度
const KeySize = 32

// KeyEnv 歸檔密鑰環境變量 (hex)，設置後優先於密鑰文件
const KeyEnv = "CHATPINS_ARCHIVE_KEY"

// sealMagic 密封數據頭，帶格式版本
var sealMagic = []byte("CPA1")

var (
	ErrNotSealed = errors.New("不是密封的歸檔數據")
	ErrTampered  = errors.New("歸檔數據被篡改或密鑰不匹配")
)

// Encryptor 歸檔加密器 (AES-256-GCM + HMAC-SHA256)
type Encryptor struct {
	key []byte
}

// NewEncryptor 按 環境變量 > 密鑰文件 > 新生成 的順序取得密鑰
func NewEncryptor(keyPath string) (*Encryptor, error) {
	key, err := loadKey(keyPath)
	if err != nil {
		return nil, err
	}
	return &Encryptor{key: key}, nil
}

func loadKey(keyPath string) ([]byte, error) {
	if keyHex := os.Getenv(KeyEnv); keyHex != "" {
		key, err := decodeKey(keyHex)
		if err != nil {
			return nil, fmt.Errorf("環境變量 %s 格式錯誤: %w", KeyEnv, err)
		}
		return key, nil
	}

	content, err := os.ReadFile(keyPath)
	if err == nil {
		key, err := decodeKey(strings.TrimSpace(string(content)))
		if err != nil {
			return nil, fmt.Errorf("密鑰文件內容無效: %w", err)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("無法讀取密鑰文件: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("生成隨機密鑰失敗: %w", err)
	}
	if err := atomicWriteKey(keyPath, key); err != nil {
		return nil, fmt.Errorf("保存新密鑰失敗: %w", err)
	}
	return key, nil
}

// atomicWriteKey 以 0600 權限原子寫入 hex 密鑰
func atomicWriteKey(filename string, key []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".archivekey.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(hex.EncodeToString(key)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

func decodeKey(input string) ([]byte, error) {
	key, err := hex.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("密鑰必須是 hex 編碼: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("密鑰長度應為 %d 字節 (當前 %d)", KeySize, len(key))
	}
	return key, nil
}

// Fingerprint 密鑰指紋，用於識別歸檔由哪個密鑰創建
func (e *Encryptor) Fingerprint() string {
	sum := sha256.Sum256(e.key)
	return hex.EncodeToString(sum[:4])
}

// Seal 加密歸檔內容
// label (通常是歸檔文件名) 作為附加數據參與認證，改名或互換文件後無法打開。
func (e *Encryptor) Seal(plain []byte, label string) ([]byte, error) {
	gcm, err := e.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sealMagic)+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plain, []byte(label)), nil
}

// Open 解密 Seal 的輸出，label 必須與密封時一致
func (e *Encryptor) Open(sealed []byte, label string) ([]byte, error) {
	if !bytes.HasPrefix(sealed, sealMagic) {
		return nil, ErrNotSealed
	}
	gcm, err := e.gcm()
	if err != nil {
		return nil, err
	}
	data := sealed[len(sealMagic):]
	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrNotSealed
	}

	nonce, body := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, []byte(label))
	if err != nil {
		return nil, ErrTampered
	}
	return plain, nil
}

func (e *Encryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// ComputeHMAC 計算歸檔文件的 HMAC (hex)
func (e *Encryptor) ComputeHMAC(data []byte) string {
	h := hmac.New(sha256.New, e.key)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC 常量時間比較 HMAC
func (e *Encryptor) VerifyHMAC(data []byte, expectedHex string) bool {
	actual := e.ComputeHMAC(data)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(strings.TrimSpace(expectedHex))) == 1
}
