package out

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"medibill/internal/modules/analysis/domain"
	"medibill/internal/platform/transport"
)

const analyzePath = "/api/files/upload-and-analyze"

type HTTPAnalysisGateway struct {
	client transport.Doer
}

func NewHTTPAnalysisGateway(client transport.Doer) *HTTPAnalysisGateway {
	return &HTTPAnalysisGateway{client: client}
}

func (g *HTTPAnalysisGateway) Analyze(ctx context.Context, token string, doc domain.Document, forceOCR bool) (domain.Report, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return domain.Report{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	body, contentType, err := transport.NewMultipartBody(
		map[string]string{"force_ocr": strconv.FormatBool(forceOCR)},
		transport.FilePart{Field: "file", FileName: doc.Name, Content: f},
	)
	if err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{}
	if err := g.client.Do(ctx, transport.Request{
		Method:        http.MethodPost,
		Path:          analyzePath,
		Authenticated: true,
		Token:         token,
		Body:          body,
		ContentType:   contentType,
	}, &report); err != nil {
		return domain.Report{}, err
	}
	return report, nil
}
