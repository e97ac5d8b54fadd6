package issuance

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/certhouse/certhouse/storage/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BatchRequest selects the participants of one training a batch operation
// applies to
type BatchRequest struct {
	TrainingID     uint   `json:"training_id" validate:"required"`
	ParticipantIDs []uint `json:"participant_ids" validate:"required,min=1,dive,required"`
}

// Validate returns a model.ValidationError describing all invalid fields
func (r BatchRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return model.ValidationError(err.Error())
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = describeFieldError(fe)
	}
	return model.ValidationError(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch {
	case strings.HasPrefix(field, "BatchRequest.TrainingID"):
		field = "training_id"
	case strings.HasPrefix(field, "BatchRequest.ParticipantIDs"):
		field = "participant_ids" + strings.TrimPrefix(field, "BatchRequest.ParticipantIDs")
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must not be empty"
	default:
		return field + " is invalid (" + fe.Tag() + ")"
	}
}
