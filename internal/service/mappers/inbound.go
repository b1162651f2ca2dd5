package mappers

import (
	api "github.com/dandori-work/fcfs-booking/api/v1alpha1"
	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/google/uuid"
)

type ClaimForm struct {
	SlotID    uuid.UUID
	CompanyID uuid.UUID
	UserID    *uuid.UUID
	RequestID string
}

func ClaimFormFromApi(identity auth.Identity, resource *api.ClaimRequest) ClaimForm {
	return ClaimForm{
		SlotID:    resource.SlotID,
		CompanyID: resource.CompanyID,
		UserID:    identity.UserID,
		RequestID: resource.RequestID,
	}
}

type CancelForm struct {
	SlotID uuid.UUID
	Reason string
}

func CancelFormFromApi(resource *api.CancelClaimRequest) CancelForm {
	return CancelForm{
		SlotID: resource.SlotID,
		Reason: resource.Reason,
	}
}
