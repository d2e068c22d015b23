// Package aes 提供敏感字段的加解密编解码器
// 设计为显式的 Encode/Decode 调用对，由存储适配层（Repository）在读写边界调用，
// 不使用 ORM 生命周期钩子，保证每个调用点的加解密行为可见
package aes

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// Codec 敏感字段编解码器
// 持有由口令派生出的 AES-256 密钥
type Codec struct {
	key []byte
}

// NewCodec 根据配置口令创建编解码器
// 使用 scrypt 从口令派生 32 字节密钥
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("aes: empty secret")
	}
	key, err := scrypt.Key([]byte(secret), []byte("kyte_chat_salt"), 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("aes: derive key: %w", err)
	}
	return &Codec{key: key}, nil
}

// Encrypt 加密明文，返回 base64 编码的密文
// 空串直接返回空串，便于可选字段的透传
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return encryptAES([]byte(plaintext), c.key)
}

// Decrypt 解密 base64 编码的密文
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	return decryptAES(ciphertext, c.key)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	// 使用 GCM 模式
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// GCM 需要一个随机的 Nonce（类似 IV，但更安全）
	// 每次加密都应该生成一个新的随机 Nonce
	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// 加密并附加 Nonce 在密文头部
	// Seal(dst, nonce, plaintext, additionalData)
	ciphertext := aesGCM.Seal(nonce, nonce, data, nil)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(encoded string, key []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("aes: ciphertext too short")
	}

	// 密文头部是加密时附加的 Nonce
	nonce, cipherData := raw[:nonceSize], raw[nonceSize:]
	plain, err := aesGCM.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
