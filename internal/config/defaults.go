package config

import "github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"

// Chain identifiers used as keys in ConfidencePolicy.ChainWeights. They must
// match the chain IDs registered by the reasoner package.
const (
	ChainDemographic       = "demographic"
	ChainProcedureCoverage = "procedure_coverage"
	ChainMedicalNecessity  = "medical_necessity"
	ChainPolicyAnalysis    = "policy_analysis"
)

// Defaults returns the built-in configuration. It covers the health-insurance
// domain completely so the engine works with no config file; deployments
// override individual tables via YAML or CLEARCLAIM_* environment variables.
func Defaults() *Config {
	return &Config{
		Log: loggingDefaults(),
		Engine: EngineConfig{
			MaxQueryLength:   2000,
			ChainConcurrency: 0,
			Policy: ConfidencePolicy{
				FindingPenalty:    0.1,
				ConfidenceFloor:   0.3,
				MissingInfoCap:    0.6,
				StepConfident:     0.9,
				StepIndeterminate: 0.35,
				// Coverage and policy chains carry more signal about the
				// final outcome than the demographic/medical context chains.
				ChainWeights: map[string]float64{
					ChainDemographic:       0.2,
					ChainProcedureCoverage: 0.3,
					ChainMedicalNecessity:  0.2,
					ChainPolicyAnalysis:    0.3,
				},
				RelevanceKeywordWeight: 0.7,
				RelevanceLengthWeight:  0.3,
			},
		},
		Search: SearchConfig{
			Enabled:   false,
			Addresses: []string{"http://localhost:9200"},
			Index:     "policy-clauses",
			TopK:      10,
		},
		Domain: domainDefaults(),
	}
}

func loggingDefaults() logging.LogConfig {
	return logging.LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}

func domainDefaults() DomainConfig {
	return DomainConfig{
		Currency: "INR",

		ProcedureSynonyms: map[string][]string{
			"knee surgery":        {"knee replacement", "knee arthroscopy", "knee operation", "acl reconstruction"},
			"hip replacement":     {"hip surgery", "hip arthroplasty", "total hip replacement"},
			"cataract surgery":    {"cataract operation", "lens replacement", "cataract removal"},
			"bypass surgery":      {"cabg", "coronary bypass", "heart bypass", "cardiac bypass"},
			"angioplasty":         {"stent placement", "coronary angioplasty", "ptca"},
			"appendectomy":        {"appendix removal", "appendix surgery"},
			"gallbladder surgery": {"cholecystectomy", "gallbladder removal"},
			"hernia repair":       {"hernia surgery", "hernioplasty"},
			"maternity care":      {"childbirth", "delivery", "pregnancy care", "caesarean section", "c-section"},
			"dialysis":            {"kidney dialysis", "hemodialysis", "renal dialysis"},
			"chemotherapy":        {"chemo", "cancer treatment", "oncology treatment"},
			"physiotherapy":       {"physical therapy", "physio", "rehabilitation therapy"},
			"dental treatment":    {"dental care", "tooth extraction", "root canal"},
			"cosmetic surgery":    {"plastic surgery", "aesthetic surgery"},
		},

		ConditionSynonyms: map[string][]string{
			"diabetes":       {"diabetes mellitus", "type 2 diabetes", "high blood sugar", "diabetic"},
			"hypertension":   {"high blood pressure", "high bp", "elevated blood pressure"},
			"heart disease":  {"cardiac disease", "coronary artery disease", "cardiovascular disease"},
			"arthritis":      {"joint pain", "osteoarthritis", "rheumatoid arthritis", "joint inflammation"},
			"asthma":         {"breathing difficulty", "respiratory condition", "bronchial asthma"},
			"kidney disease": {"renal disease", "renal failure", "chronic kidney disease", "ckd"},
			"cancer":         {"malignancy", "tumor", "carcinoma", "oncological condition"},
			"obesity":        {"overweight", "morbid obesity"},
			"fracture":       {"broken bone", "bone fracture"},
			"cataract":       {"clouded lens", "lens opacity"},
		},

		PolicyTermAliases: map[string][]string{
			"premium":           {"premium plan", "gold plan", "top tier"},
			"standard":          {"standard plan", "silver plan", "regular plan"},
			"basic":             {"basic plan", "bronze plan", "entry plan"},
			"pre-authorization": {"pre-auth", "prior authorization", "prior approval"},
			"waiting period":    {"cooling period", "initial waiting"},
			"sum insured":       {"coverage amount", "insured amount", "cover"},
		},

		AgeBands: []AgeBand{
			{Name: "infant", MinYears: 0, MaxYears: 2},
			{Name: "child", MinYears: 3, MaxYears: 17},
			{Name: "adult", MinYears: 18, MaxYears: 59},
			{Name: "senior", MinYears: 60, MaxYears: 130},
		},

		DefaultWaitingMonths: 3,
		WaitingMonthsByProcedure: map[string]int{
			"maternity care":   9,
			"cataract surgery": 24,
			"hernia repair":    12,
			"hip replacement":  24,
			"dental treatment": 6,
		},

		PreAuthProcedures: []string{
			"bypass surgery",
			"angioplasty",
			"chemotherapy",
			"dialysis",
			"hip replacement",
			"organ transplant",
		},

		ExcludedProcedures: []string{
			"cosmetic surgery",
		},

		// Limits are minor units (paise): premium 1,00,000 INR, standard
		// 50,000 INR, everything else 25,000 INR.
		CoverageLimitsMinor: map[string]int64{
			"premium":  100000_00,
			"standard": 50000_00,
			"basic":    25000_00,
			"default":  25000_00,
		},

		ProcedureGenderRestrictions: map[string]string{
			"maternity care":   "female",
			"prostate surgery": "male",
			"hysterectomy":     "female",
		},

		ProcedureAgeBands: map[string][]string{
			"knee surgery":     {"adult", "senior"},
			"hip replacement":  {"adult", "senior"},
			"cataract surgery": {"adult", "senior"},
			"maternity care":   {"adult"},
			"bypass surgery":   {"adult", "senior"},
		},

		ApprovalKeywords: []string{
			"covered", "eligible", "included", "payable", "reimbursable",
			"approved", "entitled", "admissible",
		},
		RejectionKeywords: []string{
			"excluded", "not covered", "not eligible", "not payable",
			"rejected", "denied", "inadmissible", "shall not",
		},
		ConditionalKeywords: []string{
			"subject to", "provided that", "pre-authorization", "prior approval",
			"waiting period", "co-payment", "deductible", "up to", "limited to",
			"only if",
		},

		VagueProcedureTerms: []string{
			"surgery", "treatment", "procedure", "operation", "therapy",
		},

		EmergencyContextTerms: []string{
			"emergency treatment", "urgent care", "immediate hospitalization",
			"ambulance", "emergency admission",
		},

		KnownLocations: []string{
			"mumbai", "delhi", "pune", "bangalore", "chennai",
			"kolkata", "hyderabad", "ahmedabad",
		},

		HighRiskConditions: []string{
			"heart disease", "cancer", "kidney disease", "diabetes",
		},
	}
}
