package features

// Kind says how a form should collect a field.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindChoice  Kind = "choice"
)

// Choice is one option of an enumerated field.
type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Field describes one clinical attribute for the collection step.
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Help    string   `json:"help,omitempty"`
	Kind    Kind     `json:"kind"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step,omitempty"`
	Default float64  `json:"default"`
	Choices []Choice `json:"choices,omitempty"`

	get func(PatientFeatures) float64
	set func(*PatientFeatures, float64)
}

var yesNo = []Choice{{Value: 0, Label: "No"}, {Value: 1, Label: "Yes"}}

// fieldTable is kept in canonical vector order.
var fieldTable = []Field{
	{
		Name: "age", Label: "age", Help: "Patient age in years",
		Kind: KindInteger, Min: 1, Max: 120, Step: 1, Default: 55,
		get: func(p PatientFeatures) float64 { return float64(p.Age) },
		set: func(p *PatientFeatures, v float64) { p.Age = int(v) },
	},
	{
		Name: "sex", Label: "sex",
		Kind: KindChoice, Min: 0, Max: 1, Default: 1,
		Choices: []Choice{{Value: 1, Label: "Male"}, {Value: 0, Label: "Female"}},
		get:     func(p PatientFeatures) float64 { return float64(p.Sex) },
		set:     func(p *PatientFeatures, v float64) { p.Sex = int(v) },
	},
	{
		Name: "cp", Label: "chest pain type", Help: "Chest pain reported by the patient",
		Kind: KindChoice, Min: 0, Max: 3, Default: 0,
		Choices: []Choice{
			{Value: 0, Label: "Typical Angina"},
			{Value: 1, Label: "Atypical Angina"},
			{Value: 2, Label: "Non-anginal Pain"},
			{Value: 3, Label: "Asymptomatic"},
		},
		get: func(p PatientFeatures) float64 { return float64(p.CP) },
		set: func(p *PatientFeatures, v float64) { p.CP = int(v) },
	},
	{
		Name: "trestbps", Label: "resting blood pressure", Help: "Resting blood pressure in mmHg",
		Kind: KindInteger, Min: 80, Max: 200, Step: 1, Default: 120,
		get: func(p PatientFeatures) float64 { return float64(p.Trestbps) },
		set: func(p *PatientFeatures, v float64) { p.Trestbps = int(v) },
	},
	{
		Name: "chol", Label: "serum cholesterol", Help: "Serum cholesterol in mg/dl",
		Kind: KindInteger, Min: 100, Max: 600, Step: 1, Default: 200,
		get: func(p PatientFeatures) float64 { return float64(p.Chol) },
		set: func(p *PatientFeatures, v float64) { p.Chol = int(v) },
	},
	{
		Name: "fbs", Label: "fasting blood sugar > 120 mg/dl",
		Kind: KindChoice, Min: 0, Max: 1, Default: 0, Choices: yesNo,
		get: func(p PatientFeatures) float64 { return float64(p.FBS) },
		set: func(p *PatientFeatures, v float64) { p.FBS = int(v) },
	},
	{
		Name: "restecg", Label: "resting ECG result",
		Kind: KindChoice, Min: 0, Max: 2, Default: 0,
		Choices: []Choice{
			{Value: 0, Label: "Normal"},
			{Value: 1, Label: "ST-T Wave Abnormality"},
			{Value: 2, Label: "Left Ventricular Hypertrophy"},
		},
		get: func(p PatientFeatures) float64 { return float64(p.RestECG) },
		set: func(p *PatientFeatures, v float64) { p.RestECG = int(v) },
	},
	{
		Name: "thalach", Label: "maximum heart rate", Help: "Highest heart rate reached during the test",
		Kind: KindInteger, Min: 60, Max: 220, Step: 1, Default: 150,
		get: func(p PatientFeatures) float64 { return float64(p.Thalach) },
		set: func(p *PatientFeatures, v float64) { p.Thalach = int(v) },
	},
	{
		Name: "exang", Label: "exercise-induced angina",
		Kind: KindChoice, Min: 0, Max: 1, Default: 0, Choices: yesNo,
		get: func(p PatientFeatures) float64 { return float64(p.Exang) },
		set: func(p *PatientFeatures, v float64) { p.Exang = int(v) },
	},
	{
		Name: "oldpeak", Label: "ST depression", Help: "ST depression induced by exercise relative to rest",
		Kind: KindFloat, Min: 0, Max: 10, Step: 0.1, Default: 1.0,
		get: func(p PatientFeatures) float64 { return p.Oldpeak },
		set: func(p *PatientFeatures, v float64) { p.Oldpeak = v },
	},
	{
		Name: "slope", Label: "ST segment slope",
		Kind: KindChoice, Min: 0, Max: 2, Default: 0,
		Choices: []Choice{
			{Value: 0, Label: "Upsloping"},
			{Value: 1, Label: "Flat"},
			{Value: 2, Label: "Downsloping"},
		},
		get: func(p PatientFeatures) float64 { return float64(p.Slope) },
		set: func(p *PatientFeatures, v float64) { p.Slope = int(v) },
	},
	{
		Name: "ca", Label: "number of major vessels",
		Kind: KindChoice, Min: 0, Max: 4, Default: 0,
		Choices: []Choice{
			{Value: 0, Label: "0"}, {Value: 1, Label: "1"}, {Value: 2, Label: "2"},
			{Value: 3, Label: "3"}, {Value: 4, Label: "4"},
		},
		get: func(p PatientFeatures) float64 { return float64(p.CA) },
		set: func(p *PatientFeatures, v float64) { p.CA = int(v) },
	},
	{
		Name: "thal", Label: "thalassemia",
		Kind: KindChoice, Min: 1, Max: 3, Default: 1,
		Choices: []Choice{
			{Value: 1, Label: "Normal"},
			{Value: 2, Label: "Fixed Defect"},
			{Value: 3, Label: "Reversible Defect"},
		},
		get: func(p PatientFeatures) float64 { return float64(p.Thal) },
		set: func(p *PatientFeatures, v float64) { p.Thal = int(v) },
	},
}

// Fields returns a copy of the field metadata in canonical order.
func Fields() []Field {
	out := make([]Field, len(fieldTable))
	copy(out, fieldTable)
	return out
}

// Lookup finds a field by name.
func Lookup(name string) (Field, bool) {
	for _, f := range fieldTable {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Value reads this field from a record.
func (f Field) Value(p PatientFeatures) float64 {
	return f.get(p)
}

// Set writes v into this field of a record. Integer fields truncate.
func (f Field) Set(p *PatientFeatures, v float64) {
	f.set(p, v)
}
