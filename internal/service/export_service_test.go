package service_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
)

func TestExport_NDJSON(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tag := f.createTag(t, "Go")

	tagged, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{
		Title: "Tagged", Content: "x", TagIDs: &[]int64{tag.ID}, Status: models.ArticlePublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.createArticle(t, reader, "Draft", models.ArticleDraft)
	gone := f.createArticle(t, reader, "Gone", models.ArticleDraft)
	if err := f.svc.Article.Delete(ctx, reader, gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	w := httptest.NewRecorder()
	if err := f.svc.Export.StreamArticles(ctx, admin, w, service.FormatNDJSON); err != nil {
		t.Fatalf("StreamArticles failed: %v", err)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Content-Type = %q", ct)
	}

	var records []models.ArticleNDJSON
	scanner := bufio.NewScanner(w.Body)
	for scanner.Scan() {
		var rec models.ArticleNDJSON
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid ndjson line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}

	if len(records) != 2 {
		t.Fatalf("exported %d articles, want 2 live ones", len(records))
	}
	if records[0].ID != tagged.ID || records[0].Status != "published" {
		t.Errorf("first record = %+v", records[0])
	}
	if len(records[0].TagIDs) != 1 || records[0].TagIDs[0] != tag.ID {
		t.Errorf("tag ids = %v, want [%d]", records[0].TagIDs, tag.ID)
	}
	if records[1].TagIDs == nil {
		t.Error("untagged articles should export an empty tag list")
	}
}

func TestExport_JSONArray(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, title := range []string{"One", "Two", "Three"} {
		f.createArticle(t, author, title, models.ArticleDraft)
	}

	w := httptest.NewRecorder()
	if err := f.svc.Export.StreamArticles(ctx, admin, w, service.FormatJSON); err != nil {
		t.Fatalf("StreamArticles failed: %v", err)
	}

	var records []models.ArticleNDJSON
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("exported %d articles, want 3", len(records))
	}
}

func TestExport_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Export.StreamArticles(ctx, author, httptest.NewRecorder(), service.FormatNDJSON)
	expectKind(t, err, apperror.KindPermission)

	w := httptest.NewRecorder()
	err = f.svc.Export.StreamArticles(ctx, admin, w, "csv")
	expectKind(t, err, apperror.KindValidation)
	if strings.TrimSpace(w.Body.String()) != "" {
		t.Error("nothing should be written for an unsupported format")
	}
}

func TestExport_CountByStatus(t *testing.T) {
	f := newFixture(t)
	f.createArticle(t, author, "Draft", models.ArticleDraft)
	f.createArticle(t, author, "Live 1", models.ArticlePublished)
	f.createArticle(t, author, "Live 2", models.ArticlePublished)

	counts, err := f.svc.Export.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts["draft"] != 1 || counts["published"] != 2 || counts["offline"] != 0 {
		t.Errorf("counts = %v", counts)
	}
	if len(counts) != 5 {
		t.Errorf("counts should cover every status, got %v", counts)
	}
}

func BenchmarkExport_NDJSON(b *testing.B) {
	f := newFixture(b)
	for i := 0; i < 1000; i++ {
		f.createArticle(b, author, fmt.Sprintf("Benchmark article %d", i), models.ArticlePublished)
	}
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := f.svc.Export.StreamArticles(ctx, admin, httptest.NewRecorder(), service.FormatNDJSON); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
