package certhouse

import (
	"strconv"
	"strings"

	arrays "github.com/adam-hanna/arrayOperations"
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/storage/model"
)

// registerParticipantAPI wires the endpoints a logged in participant uses for
// themself
func registerParticipantAPI(r fiber.Router, storages model.Backends, tokens *auth.Tokens) {
	authed := auth.Middleware(tokens)

	r.Post(
		"/trainings/:trainingID/enroll", authed, func(c *fiber.Ctx) error {
			tid, err := strconv.ParseUint(c.Params("trainingID"), 10, 64)
			if err != nil || tid == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(apierror.InvalidRequest("invalid training id"))
			}
			p, err := callerParticipant(c, storages.Participants)
			if err != nil {
				return apierror.Respond(c, err)
			}
			e, err := storages.Enrollments.Create(uint(tid), model.AddEnrollment{ParticipantID: p.ID})
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(e)
		},
	)

	r.Get(
		"/me/certificates", authed, func(c *fiber.Ctx) error {
			p, err := callerParticipant(c, storages.Participants)
			if err != nil {
				return apierror.Respond(c, err)
			}
			certs, err := storages.Certificates.ListPublished(p.ID)
			if err != nil {
				return apierror.Respond(c, err)
			}
			if filter := c.Query("training_ids"); filter != "" {
				wanted, err := parseIDList(filter)
				if err != nil {
					return apierror.Respond(c, err)
				}
				certs = filterByTraining(certs, wanted)
			}
			if certs == nil {
				certs = []model.Certificate{}
			}
			return c.JSON(certs)
		},
	)
}

func callerParticipant(c *fiber.Ctx, participants model.ParticipantsStore) (*model.Participant, error) {
	id, ok := auth.FromCtx(c)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return participants.GetByUser(id.ID)
}

func parseIDList(v string) ([]uint, error) {
	parts := strings.Split(v, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, model.ValidationErrorFmt("invalid training id '%s'", p)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// filterByTraining keeps the certificates of the wanted trainings, preserving
// order
func filterByTraining(certs []model.Certificate, wanted []uint) []model.Certificate {
	have := make([]uint, len(certs))
	for i, c := range certs {
		have[i] = c.TrainingID
	}
	keep := arrays.Intersect(have, wanted)
	var out []model.Certificate
	for _, c := range certs {
		for _, k := range keep {
			if c.TrainingID == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
