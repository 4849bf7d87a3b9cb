// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keystore - password protected storage of a party's signing
// key
//
// the file is JSON holding the display name, the account, the salt
// and the AES-CBC encrypted private key; the AES key is derived from
// the password with Argon2i
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/bitmark-inc/go-argon2"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/util"
)

const (
	saltSize = 16

	// signed and verified to detect a wrong password
	checkMessage = "tranched key file"
)

// File - on-disk form of a key
type File struct {
	Name       string `json:"name"`
	Account    string `json:"account"`
	Salt       string `json:"salt"`
	PrivateKey string `json:"private_key"`
}

// Generate - create a new key and write it to a file that must not
// already exist
func Generate(fileName string, name string, password string, test bool) (*account.PrivateKey, error) {
	key, err := account.NewPrivateKey(test)
	if nil != err {
		return nil, err
	}
	err = Save(fileName, name, password, key)
	if nil != err {
		return nil, err
	}
	return key, nil
}

// Save - encrypt a key into a new file
func Save(fileName string, name string, password string, key *account.PrivateKey) error {
	if util.EnsureFileExists(fileName) {
		return fault.ErrKeyFileAlreadyExists
	}
	if "" == password {
		return fault.ErrWrongPassword
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); nil != err {
		return err
	}

	secret, err := generateKey(password, salt)
	if nil != err {
		return err
	}

	encrypted, err := encryptPrivateKey(key.PrivateKey, secret)
	if nil != err {
		return err
	}

	f := File{
		Name:       name,
		Account:    key.Account().String(),
		Salt:       hex.EncodeToString(salt),
		PrivateKey: hex.EncodeToString(encrypted),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if nil != err {
		return err
	}
	return os.WriteFile(fileName, append(data, '\n'), 0600)
}

// Read - the unencrypted parts of a key file
func Read(fileName string) (*File, error) {
	data, err := os.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	f := &File{}
	err = json.Unmarshal(data, f)
	if nil != err {
		return nil, fault.ErrInvalidPrivateKeyFile
	}
	return f, nil
}

// Load - decrypt the key in a file
func Load(fileName string, password string) (*account.PrivateKey, string, error) {
	f, err := Read(fileName)
	if nil != err {
		return nil, "", err
	}

	owner, err := account.AccountFromBase58(f.Account)
	if nil != err {
		return nil, "", fault.ErrInvalidPrivateKeyFile
	}
	salt, err := hex.DecodeString(f.Salt)
	if nil != err || saltSize != len(salt) {
		return nil, "", fault.ErrInvalidPrivateKeyFile
	}
	ciphertext, err := hex.DecodeString(f.PrivateKey)
	if nil != err {
		return nil, "", fault.ErrInvalidPrivateKeyFile
	}

	secret, err := generateKey(password, salt)
	if nil != err {
		return nil, "", err
	}

	privateKey, err := decryptPrivateKey(ciphertext, secret)
	if nil != err {
		return nil, "", err
	}

	key := &account.PrivateKey{
		Test:       owner.IsTesting(),
		PrivateKey: privateKey,
	}
	if !checkSignature(key, owner) {
		return nil, "", fault.ErrWrongPassword
	}
	return key, f.Name, nil
}

func generateKey(password string, salt []byte) ([]byte, error) {
	ctx := &argon2.Context{
		Iterations:  5,
		Memory:      1 << 16,
		Parallelism: 4,
		HashLen:     32,
		Mode:        argon2.ModeArgon2i,
		Version:     argon2.Version13,
	}
	return argon2.Hash(ctx, []byte(password), salt)
}

func encryptPrivateKey(plaintext []byte, secret []byte) ([]byte, error) {
	block, err := aes.NewCipher(secret)
	if nil != err {
		return nil, err
	}
	if ed25519.PrivateKeySize != len(plaintext) {
		return nil, fault.ErrInvalidKeyLength
	}

	ciphertext := make([]byte, aes.BlockSize+ed25519.PrivateKeySize)
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); nil != err {
		return nil, err
	}
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext[aes.BlockSize:], plaintext)

	return ciphertext, nil
}

func decryptPrivateKey(ciphertext []byte, secret []byte) ([]byte, error) {
	block, err := aes.NewCipher(secret)
	if nil != err {
		return nil, err
	}
	if aes.BlockSize+ed25519.PrivateKeySize != len(ciphertext) {
		return nil, fault.ErrInvalidKeyLength
	}

	iv := ciphertext[:aes.BlockSize]
	plaintext := make([]byte, ed25519.PrivateKeySize)
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext[aes.BlockSize:])

	return plaintext, nil
}

// a wrong password decrypts to a key whose public half does not match
func checkSignature(key *account.PrivateKey, owner *account.Account) bool {
	signature := key.Sign([]byte(checkMessage))
	return nil == owner.CheckSignature([]byte(checkMessage), signature)
}
