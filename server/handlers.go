package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLang     string `json:"source_lang" binding:"required"`
	TargetLang     string `json:"target_lang" binding:"required"`
	PreserveTokens *bool  `json:"preserve_tokens"` // Defaults to true
}

func (r translateRequest) toRequest() queryfarmer.Request {
	preserve := true
	if r.PreserveTokens != nil {
		preserve = *r.PreserveTokens
	}
	return queryfarmer.Request{
		Text:           r.Text,
		SourceLang:     r.SourceLang,
		TargetLang:     r.TargetLang,
		PreserveTokens: preserve,
	}
}

type translateResponse struct {
	TranslatedText  string               `json:"translated_text"`
	Confidence      float64              `json:"confidence"`
	PreservedTokens queryfarmer.TokenSet `json:"preserved_tokens"`
	SourceLang      string               `json:"source_lang"`
	TargetLang      string               `json:"target_lang"`
	Success         bool                 `json:"success"`
	Fallback        bool                 `json:"fallback,omitempty"`
}

func newTranslateResponse(r *queryfarmer.TranslationResult) translateResponse {
	tokens := r.Tokens
	if tokens == nil {
		tokens = queryfarmer.TokenSet{}
	}
	return translateResponse{
		TranslatedText:  r.TranslatedText,
		Confidence:      r.Confidence,
		PreservedTokens: tokens,
		SourceLang:      r.SourceLang,
		TargetLang:      r.TargetLang,
		Success:         true,
		Fallback:        r.Fallback,
	}
}

type batchRequest struct {
	Items []translateRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

type batchItemResponse struct {
	translateResponse
	Error string `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItemResponse `json:"results"`
}

type htmlRequest struct {
	HTML       string `json:"html" binding:"required"`
	SourceLang string `json:"source_lang" binding:"required"`
	TargetLang string `json:"target_lang" binding:"required"`
}

type cacheStats struct {
	CacheSize          int   `json:"cache_size"`
	MaxCacheSize       int   `json:"max_cache_size"`
	CacheDurationHours int   `json:"cache_duration_hours"`
	Hits               int64 `json:"hits"`
	Misses             int64 `json:"misses"`
	Evictions          int64 `json:"evictions"`
	Expirations        int64 `json:"expirations"`
}

type healthResponse struct {
	Status             string            `json:"status"`
	SupportedLanguages map[string]string `json:"supported_languages"`
	CacheStats         cacheStats        `json:"cache_stats"`
}

type languagesResponse struct {
	Languages map[string]string   `json:"languages"`
	Pairs     map[string][]string `json:"pairs"`
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	result, err := s.translator.Translate(c.Request.Context(), req.toRequest())
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info("translation completed",
		"source", result.SourceLang,
		"target", result.TargetLang,
		"confidence", result.Confidence)
	c.JSON(http.StatusOK, newTranslateResponse(result))
}

func (s *Server) handleTranslateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	reqs := make([]queryfarmer.Request, len(req.Items))
	for i, item := range req.Items {
		reqs[i] = item.toRequest()
	}

	results, err := s.translator.TranslateBatch(c.Request.Context(), reqs, s.cfg.BatchConcurrency)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := batchResponse{Results: make([]batchItemResponse, len(results))}
	for i, r := range results {
		if r.Err != nil {
			resp.Results[i] = batchItemResponse{
				translateResponse: translateResponse{
					PreservedTokens: queryfarmer.TokenSet{},
					SourceLang:      reqs[i].SourceLang,
					TargetLang:      reqs[i].TargetLang,
				},
				Error: r.Err.Error(),
			}
			continue
		}
		resp.Results[i] = batchItemResponse{translateResponse: newTranslateResponse(r.Result)}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTranslateHTML(c *gin.Context) {
	var req htmlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	result, err := s.processor.Translate(c.Request.Context(), s.translator, req.HTML, req.SourceLang, req.TargetLang)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c *gin.Context) {
	var stats cacheStats
	if s.cache != nil {
		s.cache.Cleanup()
		st := s.cache.Stats()
		stats = cacheStats{
			CacheSize:          st.Entries,
			MaxCacheSize:       st.MaxEntries,
			CacheDurationHours: int(st.TTL.Hours()),
			Hits:               st.Hits,
			Misses:             st.Misses,
			Evictions:          st.Evictions,
			Expirations:        st.Expirations,
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:             "healthy",
		SupportedLanguages: s.translator.Languages().Names(),
		CacheStats:         stats,
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	languages := s.translator.Languages()
	c.JSON(http.StatusOK, languagesResponse{
		Languages: languages.Names(),
		Pairs:     languages.Pairs(),
	})
}

// writeError maps translation errors to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	var procErr *queryfarmer.ProcessorError
	switch {
	case errors.Is(err, queryfarmer.ErrUnsupportedLanguage):
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
	case errors.As(err, &procErr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Detail: "translation interrupted: " + err.Error()})
	default:
		s.logger.Error("translation error", "error", err, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "Translation failed: " + err.Error()})
	}
}
