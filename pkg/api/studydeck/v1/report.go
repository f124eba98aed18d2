package studydeckv1

import "time"

type GetPerformanceRequest struct {
	LearnerID  int64  `json:"learner_id"`
	WindowDays int    `json:"window_days,omitempty"`
	Filter     string `json:"filter,omitempty"`
}

type CategoryAccuracy struct {
	CategoryName string `json:"category_name"`
	Correct      int    `json:"correct"`
	Total        int    `json:"total"`
	Accuracy     int    `json:"accuracy"`
}

type DailyAccuracy struct {
	Date       string  `json:"date"`
	TotalCards int     `json:"total_cards"`
	Correct    int     `json:"correct"`
	Accuracy   float64 `json:"accuracy"`
}

type ResponseTimes struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Fastest int     `json:"fastest"`
	Slowest int     `json:"slowest"`
}

type GetPerformanceResponse struct {
	LearnerID     int64              `json:"learner_id"`
	WindowDays    int                `json:"window_days"`
	Since         time.Time          `json:"since"`
	TotalReviews  int                `json:"total_reviews"`
	Accuracy      int                `json:"accuracy"`
	Categories    []CategoryAccuracy `json:"categories"`
	Daily         []DailyAccuracy    `json:"daily"`
	Trend         string             `json:"trend"`
	Strengths     []string           `json:"strengths"`
	Weaknesses    []string           `json:"weaknesses"`
	Tip           string             `json:"tip"`
	TipMessage    string             `json:"tip_message"`
	ResponseTimes ResponseTimes      `json:"response_times"`
}
