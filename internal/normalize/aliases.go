package normalize

import "github.com/oddsync/arbscan/internal/domain"

// aliasPair maps a short or colloquial team reference to its canonical name.
// Order matters: Canonicalize applies substring replacement in table order,
// and ExtractTeams reports teams in table order, so the table is a slice
// rather than a map.
type aliasPair struct {
	alias     string
	canonical string
}

var teamAliases = []aliasPair{
	// NBA nicknames
	{"lakers", "los angeles lakers"}, {"celtics", "boston celtics"},
	{"warriors", "golden state warriors"}, {"knicks", "new york knicks"},
	{"nets", "brooklyn nets"}, {"76ers", "philadelphia 76ers"},
	{"sixers", "philadelphia 76ers"}, {"heat", "miami heat"},
	{"bucks", "milwaukee bucks"}, {"suns", "phoenix suns"},
	{"mavs", "dallas mavericks"}, {"mavericks", "dallas mavericks"},
	{"nuggets", "denver nuggets"}, {"clippers", "la clippers"},
	{"la clippers", "los angeles clippers"},
	{"thunder", "oklahoma city thunder"}, {"okc", "oklahoma city thunder"},
	{"grizzlies", "memphis grizzlies"}, {"cavs", "cleveland cavaliers"},
	{"cavaliers", "cleveland cavaliers"}, {"timberwolves", "minnesota timberwolves"},
	{"kings", "sacramento kings"},
	{"pelicans", "new orleans pelicans"}, {"hawks", "atlanta hawks"},
	{"bulls", "chicago bulls"}, {"raptors", "toronto raptors"},
	{"magic", "orlando magic"}, {"pacers", "indiana pacers"},
	{"hornets", "charlotte hornets"}, {"wizards", "washington wizards"},
	{"pistons", "detroit pistons"}, {"blazers", "portland trail blazers"},
	{"trail blazers", "portland trail blazers"}, {"spurs", "san antonio spurs"},
	{"rockets", "houston rockets"}, {"jazz", "utah jazz"},
	// NFL
	{"chiefs", "kansas city chiefs"}, {"eagles", "philadelphia eagles"},
	{"bills", "buffalo bills"}, {"ravens", "baltimore ravens"},
	{"lions", "detroit lions"}, {"49ers", "san francisco 49ers"},
	{"niners", "san francisco 49ers"}, {"cowboys", "dallas cowboys"},
	{"dolphins", "miami dolphins"}, {"bengals", "cincinnati bengals"},
	{"steelers", "pittsburgh steelers"}, {"packers", "green bay packers"},
	{"texans", "houston texans"}, {"seahawks", "seattle seahawks"},
	{"rams", "los angeles rams"}, {"chargers", "los angeles chargers"},
	{"jaguars", "jacksonville jaguars"}, {"vikings", "minnesota vikings"},
	{"colts", "indianapolis colts"}, {"saints", "new orleans saints"},
	{"bears", "chicago bears"}, {"broncos", "denver broncos"},
	{"raiders", "las vegas raiders"}, {"cardinals", "arizona cardinals"},
	{"falcons", "atlanta falcons"}, {"commanders", "washington commanders"},
	{"panthers", "carolina panthers"}, {"giants", "new york giants"},
	{"jets", "new york jets"}, {"browns", "cleveland browns"},
	{"patriots", "new england patriots"}, {"titans", "tennessee titans"},
	// MLB
	{"yankees", "new york yankees"}, {"dodgers", "los angeles dodgers"},
	{"astros", "houston astros"}, {"braves", "atlanta braves"},
	{"mets", "new york mets"}, {"phillies", "philadelphia phillies"},
	{"padres", "san diego padres"}, {"cubs", "chicago cubs"},
	{"red sox", "boston red sox"}, {"blue jays", "toronto blue jays"},
	{"guardians", "cleveland guardians"}, {"orioles", "baltimore orioles"},
	{"twins", "minnesota twins"}, {"mariners", "seattle mariners"},
	{"rangers", "texas rangers"}, {"rays", "tampa bay rays"},
	{"brewers", "milwaukee brewers"}, {"diamondbacks", "arizona diamondbacks"},
	{"d-backs", "arizona diamondbacks"}, {"pirates", "pittsburgh pirates"},
	{"reds", "cincinnati reds"}, {"white sox", "chicago white sox"},
	{"royals", "kansas city royals"}, {"rockies", "colorado rockies"},
	{"angels", "los angeles angels"}, {"tigers", "detroit tigers"},
	{"nationals", "washington nationals"}, {"marlins", "miami marlins"},
	{"athletics", "oakland athletics"},
	// NHL
	{"bruins", "boston bruins"}, {"maple leafs", "toronto maple leafs"},
	{"oilers", "edmonton oilers"}, {"avalanche", "colorado avalanche"},
	{"hurricanes", "carolina hurricanes"}, {"wild", "minnesota wild"},
	{"canucks", "vancouver canucks"}, {"stars", "dallas stars"},
	{"penguins", "pittsburgh penguins"}, {"lightning", "tampa bay lightning"},
	{"blackhawks", "chicago blackhawks"}, {"red wings", "detroit red wings"},
	{"flames", "calgary flames"}, {"predators", "nashville predators"},
	{"capitals", "washington capitals"}, {"senators", "ottawa senators"},
	{"sabres", "buffalo sabres"}, {"islanders", "new york islanders"},
	{"flyers", "philadelphia flyers"}, {"coyotes", "utah hockey club"},
	{"kraken", "seattle kraken"}, {"blue jackets", "columbus blue jackets"},
	{"ducks", "anaheim ducks"}, {"sharks", "san jose sharks"},
	{"devils", "new jersey devils"},
	// City-name aliases (for Kalshi-style titles like "Denver at Oklahoma City")
	// NBA
	{"los angeles l", "los angeles lakers"}, {"los angeles c", "la clippers"},
	{"boston", "boston celtics"}, {"golden state", "golden state warriors"},
	{"new york", "new york knicks"}, {"brooklyn", "brooklyn nets"},
	{"philadelphia", "philadelphia 76ers"}, {"miami", "miami heat"},
	{"milwaukee", "milwaukee bucks"}, {"phoenix", "phoenix suns"},
	{"dallas", "dallas mavericks"}, {"denver", "denver nuggets"},
	{"oklahoma city", "oklahoma city thunder"}, {"memphis", "memphis grizzlies"},
	{"cleveland", "cleveland cavaliers"}, {"minnesota", "minnesota timberwolves"},
	{"sacramento", "sacramento kings"}, {"new orleans", "new orleans pelicans"},
	{"atlanta", "atlanta hawks"}, {"chicago", "chicago bulls"},
	{"toronto", "toronto raptors"}, {"orlando", "orlando magic"},
	{"indiana", "indiana pacers"}, {"charlotte", "charlotte hornets"},
	{"washington", "washington wizards"}, {"detroit", "detroit pistons"},
	{"portland", "portland trail blazers"}, {"san antonio", "san antonio spurs"},
	{"houston", "houston rockets"}, {"utah", "utah jazz"},
	// NFL (city names that don't collide with NBA above)
	{"kansas city", "kansas city chiefs"}, {"buffalo", "buffalo bills"},
	{"baltimore", "baltimore ravens"}, {"san francisco", "san francisco 49ers"},
	{"cincinnati", "cincinnati bengals"}, {"pittsburgh", "pittsburgh steelers"},
	{"green bay", "green bay packers"}, {"seattle", "seattle seahawks"},
	{"jacksonville", "jacksonville jaguars"}, {"las vegas", "las vegas raiders"},
	{"carolina", "carolina panthers"}, {"tennessee", "tennessee titans"},
	{"new england", "new england patriots"},
	// NHL (city names that don't collide above)
	{"edmonton", "edmonton oilers"}, {"colorado", "colorado avalanche"},
	{"vancouver", "vancouver canucks"}, {"tampa bay", "tampa bay lightning"},
	{"calgary", "calgary flames"}, {"nashville", "nashville predators"},
	{"ottawa", "ottawa senators"}, {"columbus", "columbus blue jackets"},
	{"anaheim", "anaheim ducks"}, {"san jose", "san jose sharks"},
	{"new jersey", "new jersey devils"}, {"winnipeg", "winnipeg jets"},
	{"vegas", "vegas golden knights"},
	// EPL
	{"liverpool", "liverpool"}, {"manchester city", "manchester city"},
	{"manchester united", "manchester united"}, {"arsenal", "arsenal"},
	{"chelsea", "chelsea"}, {"tottenham", "tottenham"},
	{"aston villa", "aston villa"}, {"nottingham", "nottingham forest"},
	{"fulham", "fulham"}, {"brentford", "brentford"},
	{"brighton", "brighton"}, {"crystal palace", "crystal palace"},
	{"wolves", "wolverhampton"}, {"everton", "everton"},
	{"west ham", "west ham"}, {"bournemouth", "bournemouth"},
	{"leicester", "leicester city"}, {"southampton", "southampton"},
	{"ipswich", "ipswich town"},
}

// aliasExact supports O(1) whole-name lookups before the substring pass.
var aliasExact = func() map[string]string {
	m := make(map[string]string, len(teamAliases))
	for _, p := range teamAliases {
		m[p.alias] = p.canonical
	}
	return m
}()

var nbaTeams = []string{
	"los angeles lakers", "boston celtics", "golden state warriors", "new york knicks",
	"brooklyn nets", "philadelphia 76ers", "miami heat", "milwaukee bucks", "phoenix suns",
	"dallas mavericks", "denver nuggets", "la clippers", "los angeles clippers",
	"oklahoma city thunder", "memphis grizzlies", "cleveland cavaliers", "minnesota timberwolves",
	"sacramento kings", "new orleans pelicans", "atlanta hawks", "chicago bulls", "toronto raptors",
	"orlando magic", "indiana pacers", "charlotte hornets", "washington wizards", "detroit pistons",
	"portland trail blazers", "san antonio spurs", "houston rockets", "utah jazz",
}

var nflTeams = []string{
	"kansas city chiefs", "philadelphia eagles", "buffalo bills", "baltimore ravens",
	"detroit lions", "san francisco 49ers", "dallas cowboys", "miami dolphins", "cincinnati bengals",
	"pittsburgh steelers", "green bay packers", "houston texans", "seattle seahawks",
	"los angeles rams", "los angeles chargers", "jacksonville jaguars", "minnesota vikings",
	"indianapolis colts", "new orleans saints", "chicago bears", "denver broncos",
	"las vegas raiders", "arizona cardinals", "atlanta falcons", "washington commanders",
	"carolina panthers", "new york giants", "new york jets", "cleveland browns",
	"new england patriots", "tennessee titans",
}

var mlbTeams = []string{
	"new york yankees", "los angeles dodgers", "houston astros", "atlanta braves",
	"new york mets", "philadelphia phillies", "san diego padres", "chicago cubs", "boston red sox",
	"toronto blue jays", "cleveland guardians", "baltimore orioles", "minnesota twins",
	"seattle mariners", "texas rangers", "tampa bay rays", "milwaukee brewers",
	"arizona diamondbacks", "pittsburgh pirates", "cincinnati reds", "chicago white sox",
	"kansas city royals", "colorado rockies", "los angeles angels", "detroit tigers",
	"washington nationals", "miami marlins", "oakland athletics",
}

var nhlTeams = []string{
	"boston bruins", "toronto maple leafs", "edmonton oilers", "colorado avalanche",
	"carolina hurricanes", "minnesota wild", "vancouver canucks", "dallas stars",
	"pittsburgh penguins", "tampa bay lightning", "chicago blackhawks", "detroit red wings",
	"calgary flames", "nashville predators", "washington capitals", "ottawa senators",
	"buffalo sabres", "new york islanders", "philadelphia flyers", "utah hockey club",
	"seattle kraken", "columbus blue jackets", "anaheim ducks", "san jose sharks",
	"new jersey devils",
}

// teamToSport maps canonical team names to their league.
var teamToSport = func() map[string]domain.SportCategory {
	m := make(map[string]domain.SportCategory, 120)
	for _, t := range nbaTeams {
		m[t] = domain.SportNBA
	}
	for _, t := range nflTeams {
		m[t] = domain.SportNFL
	}
	for _, t := range mlbTeams {
		m[t] = domain.SportMLB
	}
	for _, t := range nhlTeams {
		m[t] = domain.SportNHL
	}
	return m
}()

// SportForTeam returns the league a canonical team name belongs to.
func SportForTeam(team string) (domain.SportCategory, bool) {
	s, ok := teamToSport[team]
	return s, ok
}
