package models

import "time"

type Study struct {
	ID         string
	TenantID   string
	Provider   string
	ReportName string
	StartDate  *time.Time
	EndDate    *time.Time
}

type Document struct {
	ID                string
	TenantID          string
	StudyID           string
	Filename          string
	Classification    string
	SubClassification string
}

type StudyWell struct {
	ID       string
	TenantID string
	StudyID  string
	WellID   *string
}

type Sample struct {
	ID          string
	TenantID    string
	StudyWellID string
	SampleCode  string
	SampleDate  *time.Time
	Depth       *float64
	Matrix      string
	LabSampleID string
}

type Concentration struct {
	ID             string
	TenantID       string
	SampleID       string
	SubstanceID    string
	SubstanceName  string
	Method         string
	AnalysisDate   *time.Time
	Result         *float64
	Units          string
	DetectionLimit *float64
	LabID          string
	SourceDocument string
}
