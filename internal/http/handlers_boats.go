package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"boatshare/internal/budget"
	"boatshare/internal/core"
)

type proposeRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Year        string `json:"year"`
	Length      string `json:"length"`
	Engine      string `json:"engine"`
	FinnURL     string `json:"finn_url"`
	Description string `json:"description"`
	AddedBy     string `json:"added_by"`
}

type voteRequest struct {
	Vote string `json:"vote"`
}

// boatView is a shortlisted boat as the family sees it: ranked, with the
// share each member would pay.
type boatView struct {
	core.Boat
	Score         int   `json:"score"`
	PerPersonCost int64 `json:"per_person_cost"`
}

func newBoatView(b core.Boat, familySize int) boatView {
	return boatView{Boat: b, Score: b.Score(), PerPersonCost: budget.PerPersonCost(b.Price, familySize)}
}

func (s *Server) handleListBoats(w http.ResponseWriter, r *http.Request) {
	familySize, err := queryInt(r.URL.Query(), "family_size", s.deps.Defaults.FamilySize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if familySize < 1 {
		writeError(w, r, budget.ErrInvalidFamily)
		return
	}
	boats, err := s.deps.Boats.Ranked(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]boatView, len(boats))
	for i, b := range boats {
		views[i] = newBoatView(b, familySize)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"family_size": familySize,
		"boats":       views,
	})
}

func (s *Server) handleGetBoat(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Boats.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newBoatView(b, s.deps.Defaults.FamilySize))
}

func (s *Server) handleProposeBoat(w http.ResponseWriter, r *http.Request) {
	var req proposeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.deps.Boats.Propose(r.Context(), core.Boat{
		Name:        req.Name,
		Price:       req.Price,
		Year:        strings.TrimSpace(req.Year),
		Length:      strings.TrimSpace(req.Length),
		Engine:      strings.TrimSpace(req.Engine),
		FinnURL:     strings.TrimSpace(req.FinnURL),
		Description: strings.TrimSpace(req.Description),
		AddedBy:     req.AddedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newBoatView(b, s.deps.Defaults.FamilySize))
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var up bool
	switch strings.ToLower(strings.TrimSpace(req.Vote)) {
	case "up":
		up = true
	case "down":
	default:
		writeError(w, r, errInvalidVote)
		return
	}
	b, err := s.deps.Boats.Vote(r.Context(), mux.Vars(r)["id"], up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newBoatView(b, s.deps.Defaults.FamilySize))
}

func (s *Server) handleRemoveBoat(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Boats.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
