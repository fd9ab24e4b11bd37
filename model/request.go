package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AccessibilityPreferences struct {
	AvoidStairs            bool        `json:"avoid_stairs"`
	AvoidSteepSlopes       bool        `json:"avoid_steep_slopes"`
	MaxSlopePercentage     float64     `json:"max_slope_percentage" validate:"min=0,max=30"`
	RequireCurbCuts        bool        `json:"require_curb_cuts"`
	AvoidConstruction      bool        `json:"avoid_construction"`
	PreferWiderSidewalks   bool        `json:"prefer_wider_sidewalks"`
	RequireTactileGuidance bool        `json:"require_tactile_guidance"`
	MobilityAid            MobilityAid `json:"mobility_aid" validate:"oneof=none wheelchair walker cane guide_dog"`
}

func DefaultPreferences() AccessibilityPreferences {
	return AccessibilityPreferences{
		AvoidStairs:            true,
		AvoidSteepSlopes:       true,
		MaxSlopePercentage:     5,
		RequireCurbCuts:        true,
		AvoidConstruction:      true,
		PreferWiderSidewalks:   true,
		RequireTactileGuidance: false,
		MobilityAid:            AID_NONE,
	}
}

// UnmarshalJSON 未给出的字段取默认值
func (p *AccessibilityPreferences) UnmarshalJSON(data []byte) error {
	type alias AccessibilityPreferences
	a := alias(DefaultPreferences())
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = AccessibilityPreferences(a)
	return nil
}

type RouteRequest struct {
	Start              Coordinate               `json:"start"`
	End                Coordinate               `json:"end"`
	AccessibilityLevel AccessibilityLevel       `json:"accessibility_level" validate:"oneof=low medium high"`
	Preferences        AccessibilityPreferences `json:"preferences"`
	TransportMode      TransportMode            `json:"transport_mode" validate:"oneof=walking transit mixed"`
	TimePreference     TimePreference           `json:"time_preference" validate:"oneof=fastest shortest most_accessible balanced"`
	UserID             string                   `json:"user_id,omitempty"`
}

func NewRouteRequest(start, end Coordinate) RouteRequest {
	return RouteRequest{
		Start:              start,
		End:                end,
		AccessibilityLevel: LEVEL_MEDIUM,
		Preferences:        DefaultPreferences(),
		TransportMode:      TRANSPORT_WALKING,
		TimePreference:     TIME_BALANCED,
	}
}

// UnmarshalJSON 未给出的字段取默认值
func (r *RouteRequest) UnmarshalJSON(data []byte) error {
	type alias RouteRequest
	a := alias(NewRouteRequest(Coordinate{}, Coordinate{}))
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = RouteRequest(a)
	return nil
}

func (r *RouteRequest) Validate() error {
	for _, v := range []float64{r.Start.Latitude, r.Start.Longitude, r.End.Latitude, r.End.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid route request: coordinate %v is not finite", v)
		}
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid route request: %w", err)
	}
	return nil
}

// CacheKey 起终点保留4位小数 + 无障碍等级 + 辅助器具
func (r *RouteRequest) CacheKey() string {
	return fmt.Sprintf("%.4f,%.4f-%.4f,%.4f-%s-%s",
		r.Start.Latitude, r.Start.Longitude,
		r.End.Latitude, r.End.Longitude,
		r.AccessibilityLevel, r.Preferences.MobilityAid,
	)
}

type ObstacleReport struct {
	Location                Coordinate   `json:"location"`
	Type                    ObstacleType `json:"type" validate:"oneof=construction stairs steep_slope narrow_path broken_surface blocked_access temporary_barrier other"`
	Severity                Severity     `json:"severity" validate:"oneof=low medium high critical"`
	Description             string       `json:"description" validate:"required"`
	AffectsWheelchair       bool         `json:"affects_wheelchair"`
	AffectsVisuallyImpaired bool         `json:"affects_visually_impaired"`
	AffectsMobilityAid      bool         `json:"affects_mobility_aid"`
	ImpactRadius            float64      `json:"impact_radius" validate:"min=0"`
	ReporterID              string       `json:"reporter_id,omitempty"`
}

// UnmarshalJSON 默认影响轮椅与辅助器具使用者
func (o *ObstacleReport) UnmarshalJSON(data []byte) error {
	type alias ObstacleReport
	a := alias{AffectsWheelchair: true, AffectsMobilityAid: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = ObstacleReport(a)
	return nil
}

func (o *ObstacleReport) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid obstacle report: %w", err)
	}
	return nil
}
