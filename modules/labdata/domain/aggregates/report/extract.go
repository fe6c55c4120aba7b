package report

// Extract deduplicates enriched rows into one entity set, keyed by derived
// id and ordered by first appearance. Rows without a substance identifier
// contribute no Concentration: they are unclassifiable and excluded.
func Extract(meta UploadMeta, rows []EnrichedRow) *EntitySet {
	study := Study{
		ID:         StudyID(meta.Provider, meta.ReportName, meta.StartDate, meta.EndDate),
		TenantID:   meta.TenantID,
		Provider:   meta.Provider,
		ReportName: meta.ReportName,
		StartDate:  meta.StartDate,
		EndDate:    meta.EndDate,
	}
	document := Document{
		ID:                DocumentID(study.ID, meta.Filename),
		StudyID:           study.ID,
		TenantID:          meta.TenantID,
		Filename:          meta.Filename,
		Classification:    meta.Classification,
		SubClassification: meta.SubClassification,
	}

	set := &EntitySet{
		Studies:   []Study{study},
		Documents: []Document{document},
	}

	seenWells := make(map[string]struct{})
	seenSamples := make(map[string]struct{})
	seenConcentrations := make(map[string]struct{})

	for _, row := range rows {
		wellID := StudyWellID(study.ID, row.WellID)
		if _, ok := seenWells[wellID]; !ok {
			seenWells[wellID] = struct{}{}
			set.StudyWells = append(set.StudyWells, StudyWell{
				ID:       wellID,
				StudyID:  study.ID,
				TenantID: meta.TenantID,
				WellID:   row.WellID,
			})
		}

		sampleID := SampleID(row.SampleCode, wellID)
		if _, ok := seenSamples[sampleID]; !ok {
			seenSamples[sampleID] = struct{}{}
			set.Samples = append(set.Samples, Sample{
				ID:          sampleID,
				StudyWellID: wellID,
				TenantID:    meta.TenantID,
				SampleCode:  row.SampleCode,
				SampleDate:  row.SampleDate,
				Depth:       row.Depth,
				Matrix:      row.Matrix,
				LabSampleID: row.LabSampleID,
			})
		}

		if row.SubstanceCode == "" {
			continue
		}
		concentrationID := ConcentrationID(sampleID, row.SubstanceCode, row.Method)
		if _, ok := seenConcentrations[concentrationID]; ok {
			continue
		}
		seenConcentrations[concentrationID] = struct{}{}
		set.Concentrations = append(set.Concentrations, Concentration{
			ID:             concentrationID,
			SampleID:       sampleID,
			TenantID:       meta.TenantID,
			SubstanceID:    row.SubstanceCode,
			SubstanceName:  row.SubstanceName,
			Method:         row.Method,
			AnalysisDate:   row.AnalysisDate,
			Result:         row.Result,
			Units:          row.Units,
			DetectionLimit: row.DetectionLimit,
			LabID:          row.LabID,
			SourceDocument: meta.Filename,
		})
	}

	return set
}
