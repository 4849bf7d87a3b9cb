// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type AuthorisationError GenericError
type BalanceError GenericError
type DoubleSpendError GenericError
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RejectedError GenericError
type StoreError GenericError
type TransportError GenericError
type ValidationError GenericError

// contract rule violations - keep in alphabetic order
var (
	ErrConservationViolated  = ValidationError("quantities are not conserved")
	ErrCurrencyMismatch      = ValidationError("currency mismatch")
	ErrEmptyInputsExpected   = ValidationError("no inputs should be consumed")
	ErrMissingRequiredSigner = ValidationError("missing required signer")
	ErrNegativeAmount        = ValidationError("negative amount")
	ErrOwnerMustChange       = ValidationError("owner must change for transferred state")
	ErrOwnerUnchanged        = ValidationError("owner must not change for remaining state")
	ErrSignatureInvalid      = ValidationError("signature invalid")
	ErrWrongOutputCount      = ValidationError("wrong number of states")
)

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised       = ExistsError("already initialised")
	ErrAmountTooSmall           = InvalidError("amount too small")
	ErrCannotDecodeAccount      = InvalidError("cannot decode account")
	ErrCertificateFileExists    = ExistsError("certificate file already exists")
	ErrChecksumMismatch         = InvalidError("checksum mismatch")
	ErrCommitNotApplied         = StoreError("commit not applied")
	ErrCounterpartyRejected     = RejectedError("counter-party rejected transaction")
	ErrDependencyNotFound       = NotFoundError("dependency not found")
	ErrDisconnected             = TransportError("session disconnected")
	ErrDoubleSpend              = DoubleSpendError("state already consumed")
	ErrInsufficientBalance      = BalanceError("insufficient balance")
	ErrInvalidCommand           = InvalidError("invalid command")
	ErrInvalidConfiguration     = InvalidError("invalid configuration")
	ErrInvalidCount             = InvalidError("invalid count")
	ErrInvalidIPAddress         = InvalidError("invalid IP address")
	ErrInvalidKeyLength         = InvalidError("invalid key length")
	ErrInvalidKeyType           = InvalidError("invalid key type")
	ErrInvalidLoggerChannel     = ProcessError("invalid logger channel")
	ErrInvalidMessage           = InvalidError("invalid message")
	ErrInvalidNotary            = InvalidError("invalid notary")
	ErrInvalidNotaryMode        = InvalidError("invalid notary mode")
	ErrInvalidPrivateKey        = InvalidError("invalid private key")
	ErrInvalidPrivateKeyFile    = InvalidError("invalid private key file")
	ErrInvalidPublicKey         = InvalidError("invalid public key")
	ErrInvalidPublicKeyFile     = InvalidError("invalid public key file")
	ErrInvalidRate              = InvalidError("invalid rate")
	ErrInvalidReceipt           = InvalidError("invalid receipt")
	ErrInvalidStateRecord       = InvalidError("invalid state record")
	ErrInvalidStructPointer     = InvalidError("invalid struct pointer")
	ErrInvalidTerms             = InvalidError("invalid tranche terms")
	ErrInvalidTransaction       = InvalidError("invalid transaction")
	ErrKeyFileAlreadyExists     = ExistsError("key file already exists")
	ErrMissingParameters        = InvalidError("missing parameters")
	ErrNoHandler                = NotFoundError("no handler for topic")
	ErrNotaryUnavailable        = TransportError("notary unavailable")
	ErrNotAuthorised            = AuthorisationError("only the agent may initiate this transaction")
	ErrNotConnected             = TransportError("not connected")
	ErrNotInitialised           = ProcessError("not initialised")
	ErrNotPublicKey             = InvalidError("not a public key")
	ErrPartyNotFound            = NotFoundError("party not found")
	ErrPolicyRejected           = RejectedError("acceptance policy rejected transaction")
	ErrRateLimiting             = ProcessError("rate limiting")
	ErrReceiptNotFound          = NotFoundError("receipt not found")
	ErrSessionClosed            = TransportError("session closed")
	ErrStateNotFound            = NotFoundError("state not found")
	ErrTimeout                  = TransportError("session timeout")
	ErrTrancheExists            = ExistsError("tranche reference already issued")
	ErrTransactionAlreadyExists = ExistsError("transaction already exists")
	ErrTransactionNotFound      = NotFoundError("transaction not found")
	ErrWrongPassword            = InvalidError("wrong password")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthorisationError) Error() string { return string(e) }
func (e BalanceError) Error() string       { return string(e) }
func (e DoubleSpendError) Error() string   { return string(e) }
func (e ExistsError) Error() string        { return string(e) }
func (e InvalidError) Error() string       { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }
func (e ProcessError) Error() string       { return string(e) }
func (e RejectedError) Error() string      { return string(e) }
func (e StoreError) Error() string         { return string(e) }
func (e TransportError) Error() string     { return string(e) }
func (e ValidationError) Error() string    { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrAuthorisation(e error) bool { var x AuthorisationError; return errors.As(e, &x) }
func IsErrBalance(e error) bool       { var x BalanceError; return errors.As(e, &x) }
func IsErrDoubleSpend(e error) bool   { var x DoubleSpendError; return errors.As(e, &x) }
func IsErrExists(e error) bool        { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool       { var x InvalidError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool      { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool       { var x ProcessError; return errors.As(e, &x) }
func IsErrRejected(e error) bool      { var x RejectedError; return errors.As(e, &x) }
func IsErrStore(e error) bool         { var x StoreError; return errors.As(e, &x) }
func IsErrTransport(e error) bool     { var x TransportError; return errors.As(e, &x) }
func IsErrValidation(e error) bool    { var x ValidationError; return errors.As(e, &x) }

// Retryable - true if the whole protocol may be restarted from a fresh
// proposal without the caller first re-reading ledger state
func Retryable(e error) bool {
	return IsErrTransport(e)
}

// Conflict - a double spend detected by the uniqueness oracle, carrying
// the identifier of the transaction that already consumed the input
type Conflict struct {
	TxId string
}

func (c *Conflict) Error() string {
	return string(ErrDoubleSpend) + ": " + c.TxId
}

// Unwrap - a conflict is always classed as a double spend
func (c *Conflict) Unwrap() error {
	return ErrDoubleSpend
}
