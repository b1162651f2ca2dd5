package service

import (
	"fmt"

	"github.com/google/uuid"
)

// The claim engine exposes a closed set of error kinds. Handlers map each
// kind to an HTTP status at the boundary; callers discriminate on the type.

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrSlotNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "slot")
}

func NewErrOutboxEventNotFound(id int64) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("outbox event %d not found", id)}
}

type ErrSlotAlreadyClaimed struct {
	error
}

func NewErrSlotAlreadyClaimed(id uuid.UUID) *ErrSlotAlreadyClaimed {
	return &ErrSlotAlreadyClaimed{fmt.Errorf("slot %s is already claimed", id)}
}

type ErrSlotNotClaimed struct {
	error
}

func NewErrSlotNotClaimed(id uuid.UUID) *ErrSlotNotClaimed {
	return &ErrSlotNotClaimed{fmt.Errorf("slot %s is not claimed", id)}
}

type ErrSlotAlreadyCancelled struct {
	error
}

func NewErrSlotAlreadyCancelled(id uuid.UUID) *ErrSlotAlreadyCancelled {
	return &ErrSlotAlreadyCancelled{fmt.Errorf("slot %s is already cancelled", id)}
}

type ErrSlotAlreadyCompleted struct {
	error
}

func NewErrSlotAlreadyCompleted(id uuid.UUID) *ErrSlotAlreadyCompleted {
	return &ErrSlotAlreadyCompleted{fmt.Errorf("slot %s is already completed", id)}
}

type ErrCancelFailed struct {
	error
}

func NewErrCancelFailed(id uuid.UUID) *ErrCancelFailed {
	return &ErrCancelFailed{fmt.Errorf("cancel of slot %s lost a concurrent update, retry", id)}
}

type ErrOutboxEventNotRequeueable struct {
	error
}

func NewErrOutboxEventNotRequeueable(id int64) *ErrOutboxEventNotRequeueable {
	return &ErrOutboxEventNotRequeueable{fmt.Errorf("outbox event %d is not in failed state", id)}
}
