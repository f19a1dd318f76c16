package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/campusbridge/jobmarket/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const jobsIndex = "jobs"

type JobSearchService interface {
	IndexJob(job *model.Job) error
	SearchJobs(query string, paidOnly bool, tag string, page, limit int) ([]string, int64, error)
}

type jobSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewJobSearchService(client meilisearch.ServiceManager) JobSearchService {
	s := &jobSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *jobSearchService) initIndexes() {
	filterableAttrs := []string{"is_paid", "tags"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index(jobsIndex).UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update jobs filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	_, err = s.client.Index(jobsIndex).UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update jobs sortable attributes: %v", err)
	}

	log.Println("Meilisearch jobs index initialized")
}

type meiliJobDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	IsPaid      bool     `json:"is_paid"`
	CompanyName string   `json:"company_name"`
	CreatedAt   int64    `json:"created_at"`
}

func (s *jobSearchService) cleanContentForIndex(content string) string {
	// Replace block tags with spaces to prevent text merging
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *jobSearchService) IndexJob(job *model.Job) error {
	doc := meiliJobDoc{
		ID:          job.ID.String(),
		Title:       job.Title,
		Description: s.cleanContentForIndex(job.Description),
		Tags:        job.Tags,
		IsPaid:      job.IsPaid,
		CreatedAt:   job.CreatedAt.Unix(),
	}
	if job.Company != nil {
		doc.CompanyName = job.Company.Name
	}

	if _, err := s.client.Index(jobsIndex).AddDocuments([]meiliJobDoc{doc}, strPtr("id")); err != nil {
		return fmt.Errorf("failed to index job: %w", err)
	}

	return nil
}

// SearchJobs returns matching job IDs in relevance order plus the estimated
// total, so the caller can hydrate authoritative rows from the database.
func (s *jobSearchService) SearchJobs(query string, paidOnly bool, tag string, page, limit int) ([]string, int64, error) {
	var filters []string
	if paidOnly {
		filters = append(filters, "is_paid = true")
	}
	if tag != "" {
		filters = append(filters, fmt.Sprintf("tags = %q", tag))
	}

	req := &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Offset: int64((page - 1) * limit),
	}
	if len(filters) > 0 {
		req.Filter = strings.Join(filters, " AND ")
	}

	resp, err := s.client.Index(jobsIndex).Search(query, req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search jobs: %w", err)
	}

	// Round-trip the hits through JSON so only the fields we need are kept.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, 0, err
	}
	var docs []meiliJobDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}

	return ids, resp.EstimatedTotalHits, nil
}

func strPtr(s string) *string {
	return &s
}
