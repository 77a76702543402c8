// Package report renders a prediction for people: verdict, headline,
// risk percentage and advice, in English or Indonesian.
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Skufu/GoRocky/internal/predict"
)

// View is what the result surface displays.
type View struct {
	Positive    bool    `json:"positive"`
	Verdict     string  `json:"verdict"`
	Headline    string  `json:"headline"`
	Detail      string  `json:"detail"`
	RiskPercent string  `json:"riskPercent"`
	RiskScore   float64 `json:"riskScore"`
	Advice      string  `json:"advice"`
	Model       string  `json:"model"`
	Language    string  `json:"language"`
}

const (
	msgPositive         = "RESULT: POSITIVE"
	msgNegative         = "RESULT: NEGATIVE"
	msgPositiveHeadline = "Heart disease indicated"
	msgNegativeHeadline = "Healthy heart"
	msgRisk             = "Risk probability: %s"
	msgPositiveAdvice   = "Please consult a cardiologist about this result as soon as possible."
	msgNegativeAdvice   = "Keep up a healthy lifestyle!"
	msgGenericFailure   = "The prediction could not be completed. Please check the inputs and try again."
	msgModelMissing     = "Model files not found. Make sure scaler, SVM and random forest artifacts are available."
)

var supported = []language.Tag{language.English, language.Indonesian}

var matcher = language.NewMatcher(supported)

func init() {
	id := language.Indonesian
	for key, msg := range map[string]string{
		msgPositive:         "HASIL: POSITIF",
		msgNegative:         "HASIL: NEGATIF",
		msgPositiveHeadline: "Terindikasi Penyakit Jantung",
		msgNegativeHeadline: "Jantung Sehat",
		msgRisk:             "Probabilitas Risiko: %s",
		msgPositiveAdvice:   "Segera konsultasikan hasil ini dengan dokter spesialis jantung.",
		msgNegativeAdvice:   "Tetap jaga pola hidup sehat!",
		msgGenericFailure:   "Prediksi tidak dapat diselesaikan. Periksa kembali data lalu coba lagi.",
		msgModelMissing:     "File model tidak ditemukan! Pastikan scaler, model SVM, dan model Random Forest tersedia.",
	} {
		if err := message.SetString(id, key, msg); err != nil {
			panic(err)
		}
	}
}

// MatchLanguage picks a supported language from an Accept-Language
// header or a bare tag such as "id". English is the fallback.
func MatchLanguage(accept string) language.Tag {
	tag, _ := language.MatchStrings(matcher, accept)
	base, _ := tag.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == base {
			return s
		}
	}
	return language.English
}

// Render builds the view of a successful prediction.
func Render(res predict.Result, lang language.Tag) View {
	p := message.NewPrinter(lang)
	pct := Percent(res.RiskScore, lang)

	v := View{
		Positive:    res.Positive(),
		RiskPercent: pct,
		RiskScore:   res.RiskScore,
		Model:       res.Model.Label(),
		Language:    lang.String(),
	}
	if v.Positive {
		v.Verdict = p.Sprintf(msgPositive)
		v.Headline = p.Sprintf(msgPositiveHeadline)
		v.Advice = p.Sprintf(msgPositiveAdvice)
	} else {
		v.Verdict = p.Sprintf(msgNegative)
		v.Headline = p.Sprintf(msgNegativeHeadline)
		v.Advice = p.Sprintf(msgNegativeAdvice)
	}
	v.Detail = p.Sprintf(msgRisk, pct)
	return v
}

// Percent formats a probability as a percentage with one decimal.
func Percent(score float64, lang language.Tag) string {
	return message.NewPrinter(lang).Sprintf("%.1f%%", score*100)
}

// FailureMessage is the generic text shown when a prediction fails.
func FailureMessage(lang language.Tag) string {
	return message.NewPrinter(lang).Sprintf(msgGenericFailure)
}

// MissingArtifactsMessage is shown when the models cannot be loaded.
func MissingArtifactsMessage(lang language.Tag) string {
	return message.NewPrinter(lang).Sprintf(msgModelMissing)
}
