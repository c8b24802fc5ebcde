package repository

import (
	"errors"

	"github.com/alexanderramin/arbor/internal/domain"
)

// ErrNotFound is returned when a task or project does not exist.
var ErrNotFound = domain.ErrNotFound

// ErrUnboundedFilter refuses bulk writes whose filter would match every task.
var ErrUnboundedFilter = errors.New("refusing bulk write with an empty filter")
