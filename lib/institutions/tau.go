package institutions

// Tel Aviv University. Slower than BGU and fronted by a Shibboleth SSO
// hop on some entry URLs.
func tauProfile() Profile {
	return Profile{
		ID:     "tau",
		NameHe: "אוניברסיטת תל אביב",
		NameEn: "Tel Aviv University",
		EntryURLs: []string{
			"https://moodle.tau.ac.il/local/mydashboard/",
			"https://moodle.tau.ac.il/login/index.php",
			"https://moodle.tau.ac.il/auth/shibboleth/",
			"https://moodle.tau.ac.il/moodle/login/",
			"https://moodle.tau.ac.il/",
		},
		Selectors: SelectorSet{
			Username: []string{
				"#username",
				"input[name=\"username\"]",
				"#login_username",
				"input[placeholder*=\"שם משתמש\"]",
				"input[placeholder*=\"מזהה\"]",
			},
			Password: []string{
				"#password",
				"input[name=\"password\"]",
				"#login_password",
				"input[type=\"password\"]",
				"input[placeholder*=\"סיסמ\"]",
			},
			Submit: []string{
				"#loginbtn",
				"input[type=\"submit\"]",
				"button[type=\"submit\"]",
				".btn-primary",
				"form button",
				"input[value*=\"התחבר\"]",
			},
			SSOButton: []string{
				"a[href*=\"shibboleth\"]",
				".sso-button",
				"a[href*=\"saml\"]",
				"button[data-action=\"sso\"]",
			},
			LoginToken: []string{
				"input[name=\"logintoken\"]",
				"input[type=\"hidden\"][name*=\"token\"]",
			},
			Error: []string{
				".alert-danger",
				".error",
				"#loginerrormessage",
				".login-error",
				".errormessage",
				"[role=\"alert\"]",
				".alert-error",
				".notification-error",
				".sso-error",
			},
			Success: []string{
				".dashboard-card",
				"#page-my-index",
			},
			DisplayName: defaultDisplayNameSelectors,
		},
		Flow: FlowMarkers{
			SuccessURLParts: []string{
				"/my/",
				"/dashboard/",
				"/local/mydashboard/",
				"/course/view.php",
				"/user/profile.php",
				"moodle.tau.ac.il/my",
				"moodle.tau.ac.il/local",
			},
			ErrorTextPatterns: []string{
				"invalid",
				"incorrect",
				"wrong",
				"failed",
				"error",
				"שגוי",
				"שגויים",
				"לא נכון",
				"אינו נכון",
				"כישלון",
				"נכשל",
				"שגיאה",
				"לא תקין",
			},
			MaintenanceKeywords: defaultMaintenanceKeywords,
			SSOURLParts:         []string{"shibboleth", "saml", "sso"},
			SSOContentParts:     []string{"shibboleth", "saml", "single sign", "אימות מאוחד"},
			LoginURLParts:       defaultLoginURLParts,
		},
		Timeouts: Timeouts{
			PageLoadMS:    45000,
			NetworkIdleMS: 20000,
			ElementWaitMS: 15000,
			FormSubmitMS:  30000,
			SSORedirectMS: 60000,
		},
		RateLimit: RateLimit{
			RequestsPerMinute:  25,
			ConcurrentSessions: 3,
			RetryDelaySec:      90,
			MaxRetries:         3,
			CooldownSec:        300,
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
