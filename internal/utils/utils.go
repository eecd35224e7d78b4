package utils

import "groundcite/config/models"

// NotSet is displayed in place of an empty key
const NotSet = "(not set)"

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if key == "" {
		return NotSet
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// MaskAPIKeys returns a copy of keys with every key masked
func MaskAPIKeys(keys models.APIKeys) models.APIKeys {
	return models.APIKeys{
		Gemini: models.GeminiKeys{
			Primary:   MaskAPIKey(keys.Gemini.Primary),
			Secondary: MaskAPIKey(keys.Gemini.Secondary),
		},
		OpenAI: MaskAPIKey(keys.OpenAI),
	}
}
