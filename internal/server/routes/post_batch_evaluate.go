package routes

import (
	"net/http"

	"cohera/internal/server/middleware"
	"cohera/pkg/coherence"

	"github.com/labstack/echo/v4"
)

type batchEvaluateBody struct {
	Texts []string `json:"texts" validate:"required,min=1,max=50,dive,required"`
}

type batchEvaluateItem struct {
	Index            int                        `json:"index"`
	CoherenceScore   float64                    `json:"coherence_score"`
	CoherencePercent int                        `json:"coherence_percent"`
	DisruptionReport []coherence.DisruptionItem `json:"disruption_report"`
	Error            string                     `json:"error,omitempty"`
}

type batchEvaluateResponse struct {
	Results []batchEvaluateItem `json:"results"`
}

// BatchEvaluateHandler scores several paragraphs in one request. A failing
// text is reported in its result item; it never aborts the rest.
func BatchEvaluateHandler(c echo.Context) error {
	data := new(batchEvaluateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	items := make([]batchEvaluateItem, len(data.Texts))
	for i, text := range data.Texts {
		item := batchEvaluateItem{Index: i}

		result, err := app.Pipeline.EvaluateText(ctx, text, false)
		if err != nil {
			item.Error = err.Error()
			item.DisruptionReport = []coherence.DisruptionItem{}
		} else {
			item.CoherenceScore = result.CoherenceScore
			item.CoherencePercent = result.CoherencePercent
			item.DisruptionReport = result.DisruptionReport
		}
		items[i] = item
	}

	return c.JSON(http.StatusOK, batchEvaluateResponse{Results: items})
}
