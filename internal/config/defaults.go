package config

const (
	defaultTenantID        = "common"
	defaultTokenPath       = "~/.config/drivesort/token.json"
	defaultDestinationRoot = "Organized"
	defaultDateField       = "createdDateTime"
	defaultFolderStructure = "{year}/{month}"
	defaultCategory        = "Other"
	defaultHistoryDBPath   = "~/.local/share/drivesort/history.db"
	defaultRetentionDays   = 90
	defaultScheduleCron    = "0 2 * * 0"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogDir          = "~/.local/share/drivesort/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Graph: Graph{
			TenantID:  defaultTenantID,
			Scopes:    []string{"Files.ReadWrite", "User.Read", "offline_access"},
			TokenPath: defaultTokenPath,
		},
		Organize: Organize{
			DestinationRoot: defaultDestinationRoot,
			DateField:       defaultDateField,
			FolderStructure: defaultFolderStructure,
			Recursive:       true,
			Filters: Filters{
				SkipAlreadyOrganized: true,
			},
			Safety: Safety{
				RequireConfirmation: true,
			},
		},
		Categories: Categories{
			Enabled: false,
			Default: defaultCategory,
			Rules:   DefaultCategoryRules(),
		},
		History: History{
			DBPath:        defaultHistoryDBPath,
			RetentionDays: defaultRetentionDays,
		},
		Schedule: Schedule{
			Cron: defaultScheduleCron,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			LogDir: defaultLogDir,
		},
	}
}

// DefaultCategoryRules returns the built-in category table. Order matters:
// earlier rules win score ties.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{
			Name: "Finance",
			Keywords: []string{
				"invoice", "receipt", "bill", "payment", "transaction",
				"bank", "statement", "tax", "expense", "budget",
				"payroll", "salary", "credit", "debit", "financial",
			},
			Patterns: []string{
				`\d{4}[-_]?\d{2}[-_]?\d{2}.*(?:invoice|receipt|bill)`,
				`(?:USD|EUR|GBP|\$)\s*\d+`,
			},
			Priority: 60,
		},
		{
			Name: "Pictures",
			Keywords: []string{
				"photo", "image", "picture", "img", "pic",
				"camera", "screenshot", "wallpaper", "avatar",
			},
			Extensions: []string{
				".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff",
				".heic", ".webp", ".svg", ".raw",
			},
			Patterns: []string{
				`IMG_\d+`,
				`DSC\d+`,
				`\d{8}_\d{6}`,
			},
			Priority: 70,
		},
		{
			Name:     "Videos",
			Keywords: []string{"video", "movie", "film", "clip", "recording"},
			Extensions: []string{
				".mp4", ".avi", ".mov", ".wmv", ".flv", ".mkv",
				".webm", ".m4v", ".mpg", ".mpeg",
			},
			Patterns: []string{`VID_\d+`},
			Priority: 70,
		},
		{
			Name: "Government_Documents",
			Keywords: []string{
				"passport", "license", "birth certificate", "deed",
				"registration", "visa", "permit", "tax return",
				"social security", "court", "contract", "government",
			},
			Patterns: []string{
				`w[-_]?2`,
				`1099`,
				`tax.*return`,
				`form.*\d+`,
			},
			Priority: 90,
		},
		{
			Name: "Medical",
			Keywords: []string{
				"medical", "health", "doctor", "hospital", "prescription",
				"diagnosis", "lab", "appointment", "vaccine", "patient",
				"medication", "pharmacy",
			},
			Patterns: []string{
				`medical.*record`,
				`lab.*result`,
			},
			Priority: 75,
		},
		{
			Name: "Insurance",
			Keywords: []string{
				"insurance", "policy", "coverage", "claim", "premium",
				"deductible", "beneficiary",
			},
			Patterns: []string{
				`policy.*\d+`,
				`claim.*\d+`,
			},
			Priority: 75,
		},
		{
			Name: "Work",
			Keywords: []string{
				"work", "project", "presentation", "meeting", "report",
				"proposal", "memo", "resume", "cv", "offer letter",
			},
			Extensions: []string{".pptx", ".ppt", ".xlsx", ".xls", ".docx", ".doc"},
			Priority:   55,
		},
		{
			Name: "Education",
			Keywords: []string{
				"school", "university", "college", "course", "homework",
				"assignment", "lecture", "syllabus", "transcript",
				"diploma", "certificate", "exam",
			},
			Priority: 60,
		},
		{
			Name: "Travel",
			Keywords: []string{
				"travel", "trip", "vacation", "hotel", "flight",
				"booking", "reservation", "itinerary", "boarding pass",
			},
			Patterns: []string{
				`booking.*\d+`,
				`confirmation.*\d+`,
			},
			Priority: 65,
		},
		{
			Name: "Personal",
			Keywords: []string{
				"personal", "private", "family", "journal", "diary",
				"letter", "card", "note",
			},
			Priority: 50,
		},
	}
}
