package schema

// SurveyDay is one day of self-reported trigger indicators from the daily
// survey form.
type SurveyDay struct {
	Stress            bool `json:"stress" bson:"stress"`
	Oversleep         bool `json:"oversleep" bson:"oversleep"`
	SleepDeprivation  bool `json:"sleep_deprivation" bson:"sleep_deprivation"`
	Exercise          bool `json:"exercise" bson:"exercise"`
	Fatigue           bool `json:"fatigue" bson:"fatigue"`
	Menstrual         bool `json:"menstrual" bson:"menstrual"`
	EmotionalDistress bool `json:"emotional_distress" bson:"emotional_distress"`
	ExcessiveNoise    bool `json:"excessive_noise" bson:"excessive_noise"`
	ExcessiveSmells   bool `json:"excessive_smells" bson:"excessive_smells"`
	ExcessiveAlcohol  bool `json:"excessive_alcohol" bson:"excessive_alcohol"`
	IrregularMeals    bool `json:"irregular_meals" bson:"irregular_meals"`
	Overeating        bool `json:"overeating" bson:"overeating"`
	ExcessiveCaffeine bool `json:"excessive_caffeine" bson:"excessive_caffeine"`
	ExcessiveSmoking  bool `json:"excessive_smoking" bson:"excessive_smoking"`
	Travel            bool `json:"travel" bson:"travel"`
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Vector returns the day's indicators as 0/1 values in the canonical
// SurveyFeatures order.
func (d SurveyDay) Vector() []float64 {
	return []float64{
		boolToFloat(d.Stress),
		boolToFloat(d.Oversleep),
		boolToFloat(d.SleepDeprivation),
		boolToFloat(d.Exercise),
		boolToFloat(d.Fatigue),
		boolToFloat(d.Menstrual),
		boolToFloat(d.EmotionalDistress),
		boolToFloat(d.ExcessiveNoise),
		boolToFloat(d.ExcessiveSmells),
		boolToFloat(d.ExcessiveAlcohol),
		boolToFloat(d.IrregularMeals),
		boolToFloat(d.Overeating),
		boolToFloat(d.ExcessiveCaffeine),
		boolToFloat(d.ExcessiveSmoking),
		boolToFloat(d.Travel),
	}
}

// Features converts the typed record back to the 0/1 wire format.
func (d SurveyDay) Features() FeatureVector {
	v := make(FeatureVector, len(SurveyFeatures))
	for i, value := range d.Vector() {
		v[SurveyFeatures[i]] = value
	}
	return v
}

// SurveyDayFromFeatures builds a typed record from a 0/1 wire-format vector.
// Any value other than zero counts as a raised indicator.
func SurveyDayFromFeatures(v FeatureVector) SurveyDay {
	raised := func(name string) bool { return v[name] != 0 }
	return SurveyDay{
		Stress:            raised("stress"),
		Oversleep:         raised("oversleep"),
		SleepDeprivation:  raised("sleep_deprivation"),
		Exercise:          raised("exercise"),
		Fatigue:           raised("fatigue"),
		Menstrual:         raised("menstrual"),
		EmotionalDistress: raised("emotional_distress"),
		ExcessiveNoise:    raised("excessive_noise"),
		ExcessiveSmells:   raised("excessive_smells"),
		ExcessiveAlcohol:  raised("excessive_alcohol"),
		IrregularMeals:    raised("irregular_meals"),
		Overeating:        raised("overeating"),
		ExcessiveCaffeine: raised("excessive_caffeine"),
		ExcessiveSmoking:  raised("excessive_smoking"),
		Travel:            raised("travel"),
	}
}
