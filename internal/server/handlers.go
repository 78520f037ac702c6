package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-radar/internal/calculator"
	"contact-radar/internal/directory"
	"contact-radar/internal/jobs"
	"contact-radar/internal/models"
)

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": s.dir.Stats()})
}

func filterFromQuery(c *gin.Context) directory.Filter {
	return directory.Filter{
		Search:         c.Query("q"),
		FavoritesOnly:  c.Query("favorites") == "true",
		OrganizationID: c.Query("organization"),
	}
}

func (s *Server) listContacts(c *gin.Context) {
	contacts := s.dir.List(filterFromQuery(c))
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(contacts), "contacts": contactViews(contacts)})
}

func (s *Server) groupedContacts(c *gin.Context) {
	groups := directory.GroupByOrganization(s.dir.List(filterFromQuery(c)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "groups": groupViews(groups)})
}

func (s *Server) getContact(c *gin.Context) {
	contact, err := s.dir.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "contact": newContactView(contact)})
}

type createContactRequest struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	OrganizationID string   `json:"organization_id"`
	JobTitle       string   `json:"job_title"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	Country        string   `json:"country"`
	Tags           string   `json:"tags"`
	Notes          string   `json:"notes"`
	Source         string   `json:"source"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	Force          bool     `json:"force"`
}

func (s *Server) createContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%v: %w", err, errBadRequest))
		return
	}

	contact := models.Contact{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		OrganizationID: req.OrganizationID,
		JobTitle:       req.JobTitle,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		Tags:           req.Tags,
		Notes:          req.Notes,
		Source:         models.ContactSource(req.Source),
	}
	if req.Lat != nil && req.Lon != nil {
		contact.Loc = &models.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
	}

	created, v, err := s.dir.Create(contact, req.Force)
	var dupErr *directory.DuplicateError
	if err == nil || errors.As(err, &dupErr) {
		s.metrics.ObserveDuplicate(string(v.Reason))
	}
	if err != nil {
		writeError(c, err)
		return
	}
	s.metrics.ContactsCreated.Inc()
	s.logger.Info("contact created", zap.String("id", created.ID), zap.Bool("forced_duplicate", v.Found()))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "contact": newContactView(created), "duplicate": verdictView(v)})
}

type duplicateRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

func (s *Server) checkDuplicate(c *gin.Context) {
	var req duplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%v: %w", err, errBadRequest))
		return
	}
	v := s.dir.CheckDuplicate(req.Phone, req.Name)
	s.metrics.ObserveDuplicate(string(v.Reason))
	c.JSON(http.StatusOK, gin.H{"ok": true, "verdict": verdictView(v)})
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

func (s *Server) setFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%v: %w", err, errBadRequest))
		return
	}
	contact, err := s.dir.SetFavorite(c.Param("id"), req.Favorite)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "contact": newContactView(contact)})
}

func (s *Server) listOrganizations(c *gin.Context) {
	orgs := s.dir.Organizations()
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(orgs), "organizations": orgs})
}

// === Location ===

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (s *Server) setLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%v: %w", err, errBadRequest))
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(c, fmt.Errorf("lat and lon are required: %w", calculator.ErrInvalidInput))
		return
	}
	loc := models.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
	if !loc.Valid() {
		writeError(c, fmt.Errorf("location (%v, %v) out of range: %w", loc.Lat, loc.Lon, calculator.ErrInvalidInput))
		return
	}

	session := sessions.Default(c)
	session.Set("lat", loc.Lat)
	session.Set("lon", loc.Lon)
	if err := session.Save(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "location": loc})
}

// origin prefers explicit lat/lon query parameters over the session location.
func (s *Server) origin(c *gin.Context) (models.Coordinate, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr != "" || lonStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lon, err2 := strconv.ParseFloat(lonStr, 64)
		if err1 != nil || err2 != nil {
			return models.Coordinate{}, fmt.Errorf("lat and lon must both be numbers: %w", calculator.ErrInvalidInput)
		}
		return models.Coordinate{Lat: lat, Lon: lon}, nil
	}

	session := sessions.Default(c)
	lat, ok1 := session.Get("lat").(float64)
	lon, ok2 := session.Get("lon").(float64)
	if !ok1 || !ok2 {
		return models.Coordinate{}, fmt.Errorf("no location: pass lat and lon or POST /api/location first: %w", calculator.ErrInvalidInput)
	}
	return models.Coordinate{Lat: lat, Lon: lon}, nil
}

func (s *Server) limit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return s.cfg.Ranking.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit %q: %w", raw, calculator.ErrInvalidInput)
	}
	if n > s.cfg.Ranking.MaxLimit {
		n = s.cfg.Ranking.MaxLimit
	}
	return n, nil
}

func (s *Server) nearest(c *gin.Context) {
	origin, err := s.origin(c)
	if err != nil {
		s.metrics.ObserveRank("nearest", err)
		writeError(c, err)
		return
	}
	limit, err := s.limit(c)
	if err != nil {
		s.metrics.ObserveRank("nearest", err)
		writeError(c, err)
		return
	}

	ranked, err := calculator.RankNearest(origin, s.dir.Contacts(), limit)
	s.metrics.ObserveRank("nearest", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "origin": origin, "contacts": rankedViews(ranked)})
}

func (s *Server) nearby(c *gin.Context) {
	origin, err := s.origin(c)
	if err != nil {
		s.metrics.ObserveRank("radius", err)
		writeError(c, err)
		return
	}
	radius, err := strconv.ParseFloat(c.Query("radius_km"), 64)
	if err != nil {
		err = fmt.Errorf("radius_km must be a number: %w", calculator.ErrInvalidInput)
		s.metrics.ObserveRank("radius", err)
		writeError(c, err)
		return
	}

	ranked, err := calculator.WithinRadius(origin, s.dir.Contacts(), radius)
	s.metrics.ObserveRank("radius", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "origin": origin, "radius_km": radius, "contacts": rankedViews(ranked)})
}

// === Jobs ===

func (s *Server) startJob(c *gin.Context) {
	file, err := c.FormFile("input_file")
	if err != nil {
		writeError(c, fmt.Errorf("input_file is required: %w", errBadRequest))
		return
	}
	mode, err := jobs.ParseMode(c.PostForm("mode"))
	if err != nil {
		writeError(c, fmt.Errorf("%v: %w", err, errBadRequest))
		return
	}

	if err := os.MkdirAll(s.cfg.Jobs.UploadDir, 0o755); err != nil {
		writeError(c, err)
		return
	}
	inputPath := filepath.Join(s.cfg.Jobs.UploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		writeError(c, err)
		return
	}

	job := s.runner.Start(mode, inputPath)
	s.logger.Info("job started", zap.String("job_id", job.ID), zap.String("mode", string(mode)))
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "job_id": job.ID, "mode": mode})
}

func (s *Server) lookupJob(c *gin.Context) *jobs.Job {
	job := s.jobs.Get(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "job not found"})
	}
	return job
}

func (s *Server) jobStatus(c *gin.Context) {
	job := s.lookupJob(c)
	if job == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "job": job.Snapshot(false)})
}

func (s *Server) jobLogs(c *gin.Context) {
	job := s.lookupJob(c)
	if job == nil {
		return
	}
	snap := job.Snapshot(true)
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"logs":     snap.Logs,
		"status":   snap.Status,
		"progress": snap.Progress,
	})
}

func (s *Server) cancelJob(c *gin.Context) {
	job := s.lookupJob(c)
	if job == nil {
		return
	}
	job.Cancel()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) downloadJob(c *gin.Context) {
	job := s.lookupJob(c)
	if job == nil {
		return
	}
	res := job.Result()
	if res == nil {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "job has no result", "status": job.Status()})
		return
	}
	c.FileAttachment(res.Output, res.Filename)
}
