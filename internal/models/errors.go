package models

import (
	"errors"
)

var (
	ErrGeneral                      = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound             = errors.New("there is no")
	ErrCategoryNameNotUnique        = errors.New("the category name must be unique")
	ErrTransactionAmountNotPositive = errors.New("transaction amounts must be larger than zero")
	ErrTransactionTypeInvalid       = errors.New("transaction type must be income or expense")
	ErrRecurrenceInvalid            = errors.New("the recurrence kind is not supported")
)
