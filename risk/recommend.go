package risk

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/aavahealth/migraine-api/utils"
)

var recommendationMessages = map[string]*i18n.Message{
	LevelVeryLow: {
		ID:    "recommendation.very_low",
		Other: "Low risk of migraine. Continue monitoring your health.",
	},
	LevelLow: {
		ID:    "recommendation.low",
		Other: "Low risk. Maintain current healthy habits.",
	},
	LevelModerate: {
		ID:    "recommendation.moderate",
		Other: "Moderate risk. Avoid known triggers and ensure adequate rest.",
	},
	LevelHigh: {
		ID:    "recommendation.high",
		Other: "High risk. Take preventive measures and prepare medication.",
	},
	LevelVeryHigh: {
		ID:    "recommendation.very_high",
		Other: "Very high risk. Consider consulting healthcare provider and take immediate preventive action.",
	},
}

// Recommendation returns the localized advice for a risk level. An
// unknown language or missing translation falls back to English.
func Recommendation(level, lang string) string {
	message, ok := recommendationMessages[level]
	if !ok {
		message = &i18n.Message{
			ID:    "recommendation.unknown",
			Other: "Monitor your health.",
		}
	}

	localized, err := utils.NewLocalizer(lang).Localize(&i18n.LocalizeConfig{
		DefaultMessage: message,
	})
	if err != nil {
		return message.Other
	}
	return localized
}
