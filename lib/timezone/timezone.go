package timezone

import "time"

// Name is the IANA timezone of every supported institution.
const Name = "Asia/Jerusalem"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation(Name)
	if err != nil {
		panic(err)
	}
}

// force timestamps into Israel time because our workers can end up in
// any region, which disturbs date math based on
// <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}
