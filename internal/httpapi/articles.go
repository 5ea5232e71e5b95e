// Copyright (c) 2026 Magazinify SRL <contact@magazinify.app>
// All rights reserved. See LICENSE for details.

package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"magazinify/internal/apperrors"
	"magazinify/internal/markdown"
	"magazinify/internal/models"
)

type updateArticleRequest struct {
	Title    string   `json:"title"`
	Markdown string   `json:"markdown"`
	Tags     []string `json:"tags"`
}

type regenerateArticleRequest struct {
	Guidance string `json:"guidance,omitempty"`
}

// updateArticle applies a manual edit: the Markdown is re-rendered, word
// count and reading time recomputed. Edited articles count as generated
// quality since a human has passed over them.
func (a *API) updateArticle(w http.ResponseWriter, r *http.Request) {
	tenant, mag, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	article, err := a.articleFromRequest(r, issue)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	var req updateArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondErr(w, a.Logger, apperrors.Validation("article title is required"))
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		respondErr(w, a.Logger, apperrors.Validation("article body is required"))
		return
	}

	html, err := markdown.ToHTML(req.Markdown)
	if err != nil {
		respondErr(w, a.Logger, apperrors.Validation("body does not render: %v", err))
		return
	}
	words := markdown.WordCount(req.Markdown)

	err = a.Articles.ReplaceContent(article.ID, req.Title, html, req.Markdown,
		req.Tags, words, models.ReadingMinutesFor(words), models.QualityGenerated)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	if issue.Status == models.IssuePublished {
		a.invalidatePublished(r, tenant, mag)
	}

	updated, err := a.Articles.FindByID(article.ID)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"article": updated})
}

// regenerateArticle enqueues a background rewrite of one article, with
// optional editor guidance steering the prompt.
func (a *API) regenerateArticle(w http.ResponseWriter, r *http.Request) {
	tenant, _, issue, err := a.issueFromRequest(r)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	article, err := a.articleFromRequest(r, issue)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	var req regenerateArticleRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, a.Logger, err)
			return
		}
	}

	if !tenant.CanGenerate() {
		respondErr(w, a.Logger, apperrors.BillingRequired(
			"billing status %q does not allow generation", tenant.BillingStatus))
		return
	}

	payload, err := json.Marshal(models.RegeneratePayload{
		TenantID:  tenant.ID,
		IssueID:   issue.ID,
		ArticleID: article.ID,
		Guidance:  req.Guidance,
	})
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}
	job, err := a.Jobs.Enqueue(models.JobRegenerateArticle, issue.ID, payload)
	if err != nil {
		respondErr(w, a.Logger, err)
		return
	}

	respondOK(w, http.StatusAccepted, map[string]any{"job": job})
}
