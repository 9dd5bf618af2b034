package institutions

// Ben-Gurion University. Plain form login, no SSO hop; the fastest and
// most forgiving of the three deployments.
func bguProfile() Profile {
	return Profile{
		ID:     "bgu",
		NameHe: "אוניברסיטת בן גוריון",
		NameEn: "Ben-Gurion University",
		EntryURLs: []string{
			"https://moodle.bgu.ac.il/moodle/local/mydashboard/",
			"https://moodle.bgu.ac.il/moodle/login/index.php",
			"https://moodle.bgu.ac.il/login/index.php",
			"https://moodle.bgu.ac.il/moodle/",
			"https://moodle.bgu.ac.il/",
		},
		Selectors: SelectorSet{
			Username: []string{
				"#login_username",
				"input[name=\"username\"]",
				"#username",
				"input[placeholder*=\"שם משתמש\"]",
			},
			Password: []string{
				"#login_password",
				"input[name=\"password\"]",
				"#password",
				"input[type=\"password\"]",
			},
			Submit: []string{
				"input[type=\"submit\"]",
				"button[type=\"submit\"]",
				"form button",
				".btn-primary",
				"#loginbtn",
			},
			LoginToken: []string{
				"input[name=\"logintoken\"]",
				"input[type=\"hidden\"][name*=\"token\"]",
			},
			Error:       defaultErrorSelectors,
			DisplayName: defaultDisplayNameSelectors,
		},
		Flow: FlowMarkers{
			SuccessURLParts: []string{
				"/my/",
				"/local/mydashboard/",
				"/dashboard/",
				"/course/view.php",
				"/user/profile.php",
				"moodle.bgu.ac.il/my",
				"moodle.bgu.ac.il/local",
			},
			ErrorTextPatterns: []string{
				"invalid",
				"incorrect",
				"שגוי",
				"שגויים",
				"לא נכון",
				"אינו נכון",
				"כישלון",
				"נכשל",
			},
			MaintenanceKeywords: defaultMaintenanceKeywords,
			LoginURLParts:       []string{"login"},
		},
		Timeouts: Timeouts{
			PageLoadMS:    30000,
			NetworkIdleMS: 15000,
			ElementWaitMS: 10000,
			FormSubmitMS:  20000,
		},
		RateLimit: RateLimit{
			RequestsPerMinute:  30,
			ConcurrentSessions: 5,
			RetryDelaySec:      60,
			MaxRetries:         3,
			CooldownSec:        180,
		},
		Extract: ExtractSpec{
			Kinds: []string{"courses", "grades", "assignments"},
			Selectors: map[string][]string{
				"courses": {
					".coursename",
					".course-title",
					"a[href*=\"course/view.php\"]",
					".dashboard-card",
				},
				"grades": {
					".generaltable tr",
					".grade-table tr",
					".gradeitemheader",
				},
				"assignments": {
					".activity[data-type=\"assign\"]",
					".activityname",
				},
			},
		},
	}
}
