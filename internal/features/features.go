// Package features holds the 13-field clinical record a prediction is
// made from, the metadata a form needs to collect it, and the assembler
// that packs it into the positional vector the models were fit on.
package features

// Count is the number of clinical attributes in a record.
const Count = 13

// PatientFeatures is one patient's clinical attributes.
type PatientFeatures struct {
	Age      int     `json:"age" yaml:"age"`
	Sex      int     `json:"sex" yaml:"sex"`
	CP       int     `json:"cp" yaml:"cp"`
	Trestbps int     `json:"trestbps" yaml:"trestbps"`
	Chol     int     `json:"chol" yaml:"chol"`
	FBS      int     `json:"fbs" yaml:"fbs"`
	RestECG  int     `json:"restecg" yaml:"restecg"`
	Thalach  int     `json:"thalach" yaml:"thalach"`
	Exang    int     `json:"exang" yaml:"exang"`
	Oldpeak  float64 `json:"oldpeak" yaml:"oldpeak"`
	Slope    int     `json:"slope" yaml:"slope"`
	CA       int     `json:"ca" yaml:"ca"`
	Thal     int     `json:"thal" yaml:"thal"`
}

// Names returns the field names in the order the scaler and classifiers
// were fit on.
func Names() []string {
	return []string{
		"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
		"thalach", "exang", "oldpeak", "slope", "ca", "thal",
	}
}

// Vector packs the record into its canonical positional order.
// Reordering here silently corrupts every prediction.
func (p PatientFeatures) Vector() []float64 {
	return []float64{
		float64(p.Age),
		float64(p.Sex),
		float64(p.CP),
		float64(p.Trestbps),
		float64(p.Chol),
		float64(p.FBS),
		float64(p.RestECG),
		float64(p.Thalach),
		float64(p.Exang),
		p.Oldpeak,
		float64(p.Slope),
		float64(p.CA),
		float64(p.Thal),
	}
}

// Defaults returns the values a blank form starts with.
func Defaults() PatientFeatures {
	out := PatientFeatures{}
	for _, f := range fieldTable {
		f.set(&out, f.Default)
	}
	return out
}
