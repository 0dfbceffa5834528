package domain

import "errors"

// ErrCorruptCart marks a stored cart payload that could not be decoded.
var ErrCorruptCart = errors.New("corrupt cart payload")
