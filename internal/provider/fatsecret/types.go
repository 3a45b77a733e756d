package fatsecret

import (
	"fmt"
	"strings"
)

// Food is one search hit with its per-serving facts.
type Food struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type,omitempty"`
	URL         string    `json:"url,omitempty"`
	Servings    []Serving `json:"servings,omitempty"`
}

// SoleServing returns the serving to log directly when there is exactly one.
// With several servings the caller has to ask which one was eaten.
func (f Food) SoleServing() (Serving, bool) {
	if len(f.Servings) != 1 {
		return Serving{}, false
	}
	return f.Servings[0], true
}

// Serving holds nutrition facts for one serving size. Nil means the service
// did not report the value.
type Serving struct {
	ID           string   `json:"id,omitempty"`
	Description  string   `json:"description"`
	Calories     *float64 `json:"calories,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
	Carbs        *float64 `json:"carbs,omitempty"`
	Fat          *float64 `json:"fat,omitempty"`
	SaturatedFat *float64 `json:"saturated_fat,omitempty"`
	Cholesterol  *float64 `json:"cholesterol,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Sodium       *float64 `json:"sodium,omitempty"`
	Potassium    *float64 `json:"potassium,omitempty"`
	Calcium      *float64 `json:"calcium,omitempty"`
	Iron         *float64 `json:"iron,omitempty"`
	MetricAmount *float64 `json:"metric_amount,omitempty"`
	MetricUnit   string   `json:"metric_unit,omitempty"`
}

// Micronutrients lists the optional extras that were reported.
func (s Serving) Micronutrients() map[string]float64 {
	out := map[string]float64{}
	for name, v := range map[string]*float64{
		"saturated_fat_g": s.SaturatedFat,
		"cholesterol_mg":  s.Cholesterol,
		"sugar_g":         s.Sugar,
		"fiber_g":         s.Fiber,
		"sodium_mg":       s.Sodium,
		"potassium_mg":    s.Potassium,
		"calcium_mg":      s.Calcium,
		"iron_mg":         s.Iron,
	} {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

// ExternalServiceError is a non-200 reply, or an error object, from the token
// or search endpoint.
type ExternalServiceError struct {
	Endpoint   string
	StatusCode int
	Code       int
	Message    string
}

func (e *ExternalServiceError) Error() string {
	msg := fmt.Sprintf("FatSecret %s request failed with status %d", e.Endpoint, e.StatusCode)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if m := strings.TrimSpace(e.Message); m != "" {
		msg += ": " + m
	}
	return msg
}

// DecodeError is a reply that was not the expected JSON shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode FatSecret %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   decimal `json:"expires_in"`
	Scope       string  `json:"scope"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type searchResponse struct {
	FoodsSearch *struct {
		Results *struct {
			Food flexList[apiFood] `json:"food"`
		} `json:"results"`
	} `json:"foods_search"`
	Error *apiError `json:"error"`
}

type apiFood struct {
	ID          flexString `json:"food_id"`
	Name        string     `json:"food_name"`
	Description string     `json:"food_description"`
	Brand       string     `json:"brand_name"`
	Type        string     `json:"food_type"`
	URL         string     `json:"food_url"`
	Servings    *struct {
		Serving flexList[apiServing] `json:"serving"`
	} `json:"servings"`
}

type apiServing struct {
	ID           flexString `json:"serving_id"`
	Description  string     `json:"serving_description"`
	Calories     decimal    `json:"calories"`
	Carbohydrate decimal    `json:"carbohydrate"`
	Protein      decimal    `json:"protein"`
	Fat          decimal    `json:"fat"`
	SaturatedFat decimal    `json:"saturated_fat"`
	Cholesterol  decimal    `json:"cholesterol"`
	Sugar        decimal    `json:"sugar"`
	Fiber        decimal    `json:"fiber"`
	Sodium       decimal    `json:"sodium"`
	Potassium    decimal    `json:"potassium"`
	Calcium      decimal    `json:"calcium"`
	Iron         decimal    `json:"iron"`
	MetricAmount decimal    `json:"metric_serving_amount"`
	MetricUnit   string     `json:"metric_serving_unit"`
}

func (f apiFood) toFood() Food {
	out := Food{
		ID:          string(f.ID),
		Name:        strings.TrimSpace(f.Name),
		Brand:       strings.TrimSpace(f.Brand),
		Description: strings.TrimSpace(f.Description),
		Type:        strings.TrimSpace(f.Type),
		URL:         strings.TrimSpace(f.URL),
	}
	if f.Servings == nil {
		return out
	}
	for _, s := range f.Servings.Serving {
		out.Servings = append(out.Servings, Serving{
			ID:           string(s.ID),
			Description:  strings.TrimSpace(s.Description),
			Calories:     s.Calories.ptr(),
			Protein:      s.Protein.ptr(),
			Carbs:        s.Carbohydrate.ptr(),
			Fat:          s.Fat.ptr(),
			SaturatedFat: s.SaturatedFat.ptr(),
			Cholesterol:  s.Cholesterol.ptr(),
			Sugar:        s.Sugar.ptr(),
			Fiber:        s.Fiber.ptr(),
			Sodium:       s.Sodium.ptr(),
			Potassium:    s.Potassium.ptr(),
			Calcium:      s.Calcium.ptr(),
			Iron:         s.Iron.ptr(),
			MetricAmount: s.MetricAmount.ptr(),
			MetricUnit:   strings.TrimSpace(s.MetricUnit),
		})
	}
	return out
}
