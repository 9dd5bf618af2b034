package institutions

// The Hebrew University of Jerusalem. The slowest deployment of the
// three, fronted by a CAS server, and the only one needing an extra
// stabilization wait after submit before the post-login DOM is trustworthy.
func hujiProfile() Profile {
	return Profile{
		ID:     "huji",
		NameHe: "האוניברסיטה העברית בירושלים",
		NameEn: "Hebrew University of Jerusalem",
		EntryURLs: []string{
			"https://moodle.huji.ac.il/local/mydashboard/",
			"https://moodle.huji.ac.il/moodle25/login/index.php",
			"https://moodle.huji.ac.il/login/index.php",
			"https://moodle.huji.ac.il/auth/shibboleth/",
			"https://moodle.huji.ac.il/portal/",
			"https://moodle.huji.ac.il/",
		},
		Selectors: SelectorSet{
			Username: []string{
				"#username",
				"input[name=\"username\"]",
				"#login_username",
				"#user",
				"input[placeholder*=\"שם משתמש\"]",
				"input[placeholder*=\"מזהה\"]",
				"input[placeholder*=\"ת.ז.\"]",
			},
			Password: []string{
				"#password",
				"input[name=\"password\"]",
				"#login_password",
				"#pass",
				"input[type=\"password\"]",
				"input[placeholder*=\"סיסמ\"]",
			},
			Submit: []string{
				"#loginbtn",
				"input[type=\"submit\"]",
				"button[type=\"submit\"]",
				".btn-primary",
				".login-button",
				"form button",
				"input[value*=\"התחבר\"]",
				"input[value*=\"כניסה\"]",
			},
			SSOButton: []string{
				"a[href*=\"shibboleth\"]",
				"a[href*=\"saml\"]",
				".sso-button",
				".huji-sso",
				"button[data-action=\"sso\"]",
				"a[href*=\"portal\"]",
			},
			LoginToken: []string{
				"input[name=\"logintoken\"]",
				"input[name=\"lt\"]",
				"input[type=\"hidden\"][name*=\"token\"]",
			},
			CASFields: []string{
				"input[name=\"execution\"]",
				"input[name=\"_eventId\"]",
				"input[name=\"service\"]",
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
				".cas-error",
				".sso-error",
				".huji-error",
				"#fm1 .errors",
			},
			Success: []string{
				".dashboard-card",
				"#page-my-index",
				".huji-dashboard",
				".student-portal",
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
				"/portal/student/",
				"moodle.huji.ac.il/my",
				"moodle.huji.ac.il/local",
				"moodle.huji.ac.il/portal",
			},
			ErrorTextPatterns: []string{
				"invalid",
				"incorrect",
				"wrong",
				"failed",
				"error",
				"denied",
				"unauthorized",
				"שגוי",
				"שגויים",
				"לא נכון",
				"אינו נכון",
				"כישלון",
				"נכשל",
				"שגיאה",
				"לא תקין",
				"לא מורשה",
				"נדחה",
				"אין הרשאה",
			},
			MaintenanceKeywords: defaultMaintenanceKeywords,
			CASURLParts:         []string{"cas/login", "cas.huji", "sso.huji"},
			CASContentParts:     []string{"cas", "central authentication", "אימות מרכזי"},
			SSOURLParts:         []string{"shibboleth", "saml"},
			SSOContentParts:     []string{"shibboleth", "single sign", "אימות מאוחד"},
			LoginURLParts:       defaultLoginURLParts,
		},
		Timeouts: Timeouts{
			PageLoadMS:        60000,
			NetworkIdleMS:     30000,
			ElementWaitMS:     20000,
			FormSubmitMS:      45000,
			SSORedirectMS:     90000,
			CASRedirectMS:     60000,
			PostSubmitDelayMS: 3000,
		},
		RateLimit: RateLimit{
			RequestsPerMinute:  20,
			ConcurrentSessions: 2,
			RetryDelaySec:      120,
			MaxRetries:         3,
			CooldownSec:        600,
		},
		Extract: ExtractSpec{
			Kinds: []string{"courses", "grades"},
			Selectors: map[string][]string{
				"courses": {
					".coursename",
					".course-title",
					"h3 a",
					"a[href*=\"course/view.php\"]",
				},
				"grades": {
					".generaltable tr",
					".gradestable tr",
					"tr[class*=\"grade\"]",
					".gradeitemheader",
				},
			},
		},
	}
}
