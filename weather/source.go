package weather

import (
	"fmt"

	"github.com/aavahealth/migraine-api/external/meteo"
)

var (
	ErrConditionsNotFound   = fmt.Errorf("weather conditions are not found")
	ErrSourceNotInitialized = fmt.Errorf("weather source is not initialized")
)

// Conditions are the ambient values a sensor report may omit; they fill
// the weather-fed slots of the sensor contract.
type Conditions struct {
	TemperatureC   float64
	AirPressureHPA float64
	ConditionCode  float64
	AirQuality     float64
}

type Source interface {
	CurrentConditions(latitude, longitude float64) (*Conditions, error)
}

type MeteoSource struct {
	client *meteo.MeteoClient
}

func NewMeteoSource(endpoint string) *MeteoSource {
	return &MeteoSource{
		client: meteo.New(endpoint),
	}
}

func (m *MeteoSource) CurrentConditions(latitude, longitude float64) (*Conditions, error) {
	observation, err := m.client.Current(latitude, longitude)
	if err != nil {
		return nil, err
	}
	if observation == nil {
		return nil, ErrConditionsNotFound
	}

	return &Conditions{
		TemperatureC:   observation.TemperatureC,
		AirPressureHPA: observation.AirPressureHPA,
		ConditionCode:  observation.ConditionCode,
		AirQuality:     observation.AirQuality,
	}, nil
}

var defaultSource Source

func SetWeatherSource(source Source) {
	defaultSource = source
}

func CurrentConditions(latitude, longitude float64) (*Conditions, error) {
	if defaultSource == nil {
		return nil, ErrSourceNotInitialized
	}

	return defaultSource.CurrentConditions(latitude, longitude)
}
