package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/Skufu/GoRocky/internal/features"
	"github.com/Skufu/GoRocky/internal/predict"
	"github.com/Skufu/GoRocky/internal/report"
)

type handlers struct {
	pipeline     *predict.Pipeline
	defaultModel predict.Selector
	log          zerolog.Logger
}

// featuresPayload uses pointers so an omitted field is told apart from 0.
type featuresPayload struct {
	Age      *int     `json:"age" binding:"required"`
	Sex      *int     `json:"sex" binding:"required"`
	CP       *int     `json:"cp" binding:"required"`
	Trestbps *int     `json:"trestbps" binding:"required"`
	Chol     *int     `json:"chol" binding:"required"`
	FBS      *int     `json:"fbs" binding:"required"`
	RestECG  *int     `json:"restecg" binding:"required"`
	Thalach  *int     `json:"thalach" binding:"required"`
	Exang    *int     `json:"exang" binding:"required"`
	Oldpeak  *float64 `json:"oldpeak" binding:"required"`
	Slope    *int     `json:"slope" binding:"required"`
	CA       *int     `json:"ca" binding:"required"`
	Thal     *int     `json:"thal" binding:"required"`
}

func (p featuresPayload) record() features.PatientFeatures {
	return features.PatientFeatures{
		Age:      *p.Age,
		Sex:      *p.Sex,
		CP:       *p.CP,
		Trestbps: *p.Trestbps,
		Chol:     *p.Chol,
		FBS:      *p.FBS,
		RestECG:  *p.RestECG,
		Thalach:  *p.Thalach,
		Exang:    *p.Exang,
		Oldpeak:  *p.Oldpeak,
		Slope:    *p.Slope,
		CA:       *p.CA,
		Thal:     *p.Thal,
	}
}

type predictRequest struct {
	Model    string           `json:"model"`
	Features *featuresPayload `json:"features" binding:"required"`
}

type predictResponse struct {
	Label     int              `json:"label"`
	RiskScore float64          `json:"riskScore"`
	Model     predict.Selector `json:"model"`
	View      report.View      `json:"view"`
}

type modelChoice struct {
	Value predict.Selector `json:"value"`
	Label string           `json:"label"`
}

func (h *handlers) form(c *gin.Context) {
	models := make([]modelChoice, 0, 2)
	for _, s := range predict.Selectors() {
		models = append(models, modelChoice{Value: s, Label: s.Label()})
	}
	c.JSON(http.StatusOK, gin.H{
		"fields":       features.Fields(),
		"models":       models,
		"defaultModel": h.defaultModel,
	})
}

func (h *handlers) predict(c *gin.Context) {
	lang := requestLanguage(c)

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "message": "request body must carry every feature"})
		return
	}

	sel := h.defaultModel
	if req.Model != "" {
		parsed, err := predict.ParseSelector(req.Model)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_model", "message": err.Error()})
			return
		}
		sel = parsed
	}

	record := req.Features.record()
	if err := record.Validate(); err != nil {
		var verrs features.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "details": verrs})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "message": err.Error()})
		return
	}

	res, err := h.pipeline.Predict(record, sel)
	if err != nil {
		h.log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("model", string(sel)).
			Msg("prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "prediction_failed",
			"message":   report.FailureMessage(lang),
			"requestId": requestID(c),
		})
		return
	}

	c.JSON(http.StatusOK, predictResponse{
		Label:     res.Label,
		RiskScore: res.RiskScore,
		Model:     res.Model,
		View:      report.Render(res, lang),
	})
}

func requestLanguage(c *gin.Context) language.Tag {
	if q := c.Query("lang"); q != "" {
		return report.MatchLanguage(q)
	}
	return report.MatchLanguage(c.GetHeader("Accept-Language"))
}
