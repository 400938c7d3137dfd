package api

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/internal/excel"
	"github.com/example/wordquiz/pkg/models"
)

const (
	maxTopicNameLength = 32
	maxUploadSize      = 10 << 20
)

type topicRequest struct {
	Name          string `json:"name"`
	LongDesc      string `json:"long_desc"`
	ShortDesc     string `json:"short_desc"`
	IsHidden      bool   `json:"is_hidden"`
	AvailableFrom string `json:"available_from"` // YYYY-MM-DD, defaults to today
}

func (s *Server) topicFromRequest(r *http.Request) (*models.Topic, error) {
	var req topicRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxTopicNameLength {
		return nil, badRequest("topic name must be 1-32 characters")
	}
	topic := &models.Topic{
		Name:          name,
		LongDesc:      req.LongDesc,
		ShortDesc:     strings.TrimSpace(req.ShortDesc),
		IsHidden:      req.IsHidden,
		AvailableFrom: s.today(),
	}
	if req.AvailableFrom != "" {
		day, err := time.Parse(time.DateOnly, req.AvailableFrom)
		if err != nil {
			return nil, badRequest("available_from must be YYYY-MM-DD")
		}
		topic.AvailableFrom = day
	}
	return topic, nil
}

// POST /topics
func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.topicFromRequest(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.topics.Create(r.Context(), topic); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

// PUT /topics/{topicID}
func (s *Server) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	topic, err := s.topicFromRequest(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	topic.ID = topicID
	if err := s.topics.Update(r.Context(), topic); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	updated, err := s.topics.GetByID(r.Context(), topicID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DELETE /topics/{topicID}
func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.topics.Delete(r.Context(), topicID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /topics/{topicID}/words
func (s *Server) handleListTopicWords(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if _, err := s.topics.GetByID(r.Context(), topicID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	words, err := s.words.ListByTopic(r.Context(), topicID, 0)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

type wordRequest struct {
	Origin string `json:"origin"`
	Target string `json:"target"`
}

// POST /topics/{topicID}/words  { "origin": "...", "target": "..." }
//
// An existing word with the same origin is reused so that scores follow it across topics.
func (s *Server) handleAddTopicWord(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var req wordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	req.Origin, req.Target = strings.TrimSpace(req.Origin), strings.TrimSpace(req.Target)
	if req.Origin == "" || req.Target == "" {
		writeError(w, r, s.logger, badRequest("origin and target are required"))
		return
	}

	var word *models.Word
	err = database.WithTx(r.Context(), s.db, func(tx *sqlx.Tx) error {
		topics := database.NewTopicRepository(tx)
		words := database.NewWordRepository(tx)

		if _, err := topics.GetByID(r.Context(), topicID); err != nil {
			return err
		}
		existing, err := words.GetByOrigin(r.Context(), req.Origin)
		switch {
		case err == nil:
			if existing.Target != req.Target {
				return badRequest("word already exists with target " + existing.Target)
			}
			word = existing
		case errors.Is(err, models.ErrNotFound):
			word = &models.Word{Origin: req.Origin, Target: req.Target}
			if err := words.Create(r.Context(), word); err != nil {
				return err
			}
		default:
			return err
		}
		_, err = topics.AddWord(r.Context(), topicID, word.ID)
		return err
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, word)
}

// DELETE /topics/{topicID}/words/{wordID}
func (s *Server) handleRemoveTopicWord(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topicID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	wordID, err := pathID(r, "wordID")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.topics.RemoveWord(r.Context(), topicID, wordID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /words/import  multipart form with a "file" field (.xlsx or .csv)
func (s *Server) handleImportWords(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, s.logger, badRequest("invalid upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, s.logger, badRequest("missing file"))
		return
	}
	defer file.Close()

	format := excel.FormatFromFilename(header.Filename)
	cfg := excel.DefaultImportConfig()
	if sheet := r.FormValue("sheet"); sheet != "" {
		cfg.SheetName = sheet
	}

	result, err := s.importer.ImportWords(r.Context(), file, format, cfg)
	if err != nil {
		writeError(w, r, s.logger, badRequest(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
