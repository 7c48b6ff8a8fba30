package scoring

import (
	"github.com/mcoot/rajamantri/internal/model"
)

const (
	NoteCorrect = "Mantri guessed correctly"
	NoteWrong   = "Mantri guessed wrongly; Chor steals Mantri's points"
)

// Service computes round outcomes. It holds no state.
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// Score resolves a Mantri's guess against the dealt roles.
//
// Every roled player starts from their role's base points. A correct guess
// (the guessed player is the Chor) leaves those untouched. A wrong guess moves
// the Mantri's base points to the Chor and zeroes the Mantri; if no Chor is
// present nothing is moved.
func (s *Service) Score(roles model.Roles, mantri, guessed model.PlayerID) model.RoundResult {
	points := make(map[model.PlayerID]int, len(roles))
	for pid, role := range roles {
		points[pid] = model.BasePoints(role)
	}

	if roles[guessed] == model.RoleChor {
		return model.RoundResult{
			Correct: true,
			Note:    NoteCorrect,
			Points:  points,
		}
	}

	if chor, ok := roles.HolderOf(model.RoleChor); ok {
		points[chor] += model.BasePoints(model.RoleMantri)
		points[mantri] = 0
	}

	return model.RoundResult{
		Correct: false,
		Note:    NoteWrong,
		Points:  points,
	}
}
