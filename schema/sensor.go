package schema

// SensorDay is one day of physiological and environmental readings. The last
// four fields arrive from the ambient weather feed rather than the wearable.
type SensorDay struct {
	ScreenTimeHours  float64 `json:"screen_time_h" bson:"screen_time_h"`
	HeartRateBPM     float64 `json:"heart_rate_bpm" bson:"heart_rate_bpm"`
	Steps            float64 `json:"steps" bson:"steps"`
	SleepHours       float64 `json:"sleep_h" bson:"sleep_h"`
	StressLevel      float64 `json:"stress_level" bson:"stress_level"`
	RespirationRate  float64 `json:"respiration_rate" bson:"respiration_rate"`
	TemperatureC     float64 `json:"temperature_c" bson:"temperature_c"`
	AirQuality       float64 `json:"air_quality" bson:"air_quality"`
	WeatherCondition float64 `json:"weather_condition" bson:"weather_condition"`
	AirPressureHPA   float64 `json:"air_pressure_hpa" bson:"air_pressure_hpa"`
}

// Vector returns the day's values in the canonical SensorFeatures order.
func (d SensorDay) Vector() []float64 {
	return []float64{
		d.ScreenTimeHours,
		d.HeartRateBPM,
		d.Steps,
		d.SleepHours,
		d.StressLevel,
		d.RespirationRate,
		d.TemperatureC,
		d.AirQuality,
		d.WeatherCondition,
		d.AirPressureHPA,
	}
}

// Features converts the typed record back to the wire format.
func (d SensorDay) Features() FeatureVector {
	v := make(FeatureVector, len(SensorFeatures))
	for i, value := range d.Vector() {
		v[SensorFeatures[i]] = value
	}
	return v
}

// SensorDayFromFeatures builds a typed record from a wire-format vector. The
// vector should be validated first; absent keys become zero values.
func SensorDayFromFeatures(v FeatureVector) SensorDay {
	return SensorDay{
		ScreenTimeHours:  v["screen_time_h"],
		HeartRateBPM:     v["heart_rate_bpm"],
		Steps:            v["steps"],
		SleepHours:       v["sleep_h"],
		StressLevel:      v["stress_level"],
		RespirationRate:  v["respiration_rate"],
		TemperatureC:     v["temperature_c"],
		AirQuality:       v["air_quality"],
		WeatherCondition: v["weather_condition"],
		AirPressureHPA:   v["air_pressure_hpa"],
	}
}
