package meteo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Observation is the ambient reading returned by the weather service,
// already in the units the sensor contract uses.
type Observation struct {
	TemperatureC   float64 `json:"temperature_c"`
	AirPressureHPA float64 `json:"air_pressure_hpa"`
	ConditionCode  float64 `json:"condition_code"`
	AirQuality     float64 `json:"air_quality"`
}

type MeteoClient struct {
	endpoint string
	client   *http.Client
}

func New(endpoint string) *MeteoClient {
	return &MeteoClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Current fetches the present conditions at a coordinate.
func (m *MeteoClient) Current(latitude, longitude float64) (*Observation, error) {
	q := url.URL{
		Path: "current",
		RawQuery: url.Values{
			"lat": []string{strconv.FormatFloat(latitude, 'f', -1, 64)},
			"lon": []string{strconv.FormatFloat(longitude, 'f', -1, 64)},
		}.Encode(),
	}

	reqString := fmt.Sprintf("%s/%s", m.endpoint, q.String())
	log.WithField("prefix", "meteo").WithField("req", reqString).Debug("request from weather service")

	resp, err := m.client.Get(reqString)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		dumpBytes, err := httputil.DumpResponse(resp, true)
		if err != nil {
			log.WithField("prefix", "meteo").WithError(err).Error("fail to dump response")
		}
		log.WithField("prefix", "meteo").WithField("resp", string(dumpBytes)).Error("error response from weather service")
		return nil, fmt.Errorf("fail to query weather conditions")
	}

	var result Observation
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
