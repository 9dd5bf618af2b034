package authenticator

import (
	"unisync-backend/lib/institutions"
)

func testProfile() institutions.Profile {
	return institutions.Profile{
		ID:     "testu",
		NameHe: "אוניברסיטת הבדיקה",
		NameEn: "Test University",
		EntryURLs: []string{
			"https://moodle.testu.ac.il/dashboard/",
			"https://moodle.testu.ac.il/login/index.php",
		},
		Selectors: institutions.SelectorSet{
			Username:    []string{"#username", "input[name=\"username\"]"},
			Password:    []string{"#password", "input[type=\"password\"]"},
			Submit:      []string{"#loginbtn", "input[type=\"submit\"]"},
			SSOButton:   []string{"a[href*=\"shibboleth\"]"},
			CASFields:   []string{"input[name=\"execution\"]"},
			Error:       []string{".alert-danger", ".error"},
			Success:     []string{"#page-my-index"},
			DisplayName: []string{".username"},
		},
		Flow: institutions.FlowMarkers{
			SuccessURLParts:     []string{"/my/", "/dashboard/"},
			ErrorTextPatterns:   []string{"invalid", "incorrect", "שגוי", "שגויים"},
			MaintenanceKeywords: []string{"maintenance", "תחזוקה"},
			CASURLParts:         []string{"cas/login"},
			CASContentParts:     []string{"central authentication"},
			SSOURLParts:         []string{"shibboleth"},
			LoginURLParts:       []string{"login", "cas", "auth"},
		},
		Timeouts: institutions.Timeouts{
			PageLoadMS:    1000,
			NetworkIdleMS: 100,
			ElementWaitMS: 100,
			FormSubmitMS:  100,
		},
		RateLimit: institutions.RateLimit{
			RequestsPerMinute:  30,
			ConcurrentSessions: 5,
			RetryDelaySec:      1,
			MaxRetries:         3,
			CooldownSec:        2,
		},
	}
}

const loginFormHTML = `
<html><body>
	<form id="login">
		<input id="username" name="username" type="text"/>
		<input id="password" name="password" type="password"/>
		<input id="loginbtn" type="submit" value="Log in"/>
	</form>
</body></html>`

const dashboardHTML = `
<html><body id="page-my-index">
	<span class="username">ישראל ישראלי</span>
	<div class="coursename">מבוא למדעי המחשב (201.1.12)</div>
</body></html>`
