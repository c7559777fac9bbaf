package analyzer

// SEOReport is the structured result of extracting SEO metadata from one page
type SEOReport struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Keywords    *string           `json:"keywords"`
	Headings    []Heading         `json:"headings"`
	OGTags      map[string]string `json:"ogTags"`      // keys without the "og:" prefix
	TwitterTags map[string]string `json:"twitterTags"` // keys without the "twitter:" prefix
	Images      []Image           `json:"images"`
	Links       []Link            `json:"links"`
	WordCount   int               `json:"wordCount"`
}

type Heading struct {
	Level string `json:"level"` // h1..h6
	Text  string `json:"text"`
}

type Image struct {
	Src string  `json:"src"`
	Alt *string `json:"alt"`
}

type Link struct {
	Href       string `json:"href"`
	Text       string `json:"text"`
	IsExternal bool   `json:"isExternal"`
	Nofollow   bool   `json:"nofollow"`
}

// Status grades a metric the way the dashboard colors it
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusBad     Status = "bad"
)

// Summary holds the derived values shown next to the raw report
type Summary struct {
	TitleLength       int           `json:"titleLength"`
	TitleStatus       Status        `json:"titleStatus"`
	DescriptionLength int           `json:"descriptionLength"`
	DescriptionStatus Status        `json:"descriptionStatus"`
	WordCount         int           `json:"wordCount"`
	Links             LinkStats     `json:"links"`
	Images            ImageStats    `json:"images"`
	Checklist         Checklist     `json:"checklist"`
	Search            SearchPreview `json:"search"`
	OpenGraph         CardPreview   `json:"openGraph"`
	Twitter           CardPreview   `json:"twitter"`
}

type LinkStats struct {
	Total    int `json:"total"`
	Internal int `json:"internal"`
	External int `json:"external"`
	Nofollow int `json:"nofollow"`
}

type ImageStats struct {
	Total      int `json:"total"`
	MissingAlt int `json:"missingAlt"`
}

type Checklist struct {
	TitleFound        bool `json:"titleFound"`
	DescriptionFound  bool `json:"descriptionFound"`
	OGTitleFound      bool `json:"ogTitleFound"`
	TwitterTitleFound bool `json:"twitterTitleFound"`
}

// SearchPreview is how the page would look as a search engine result
type SearchPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CardPreview is a social link card (Open Graph or Twitter)
type CardPreview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Domain      string `json:"domain"`
}

// Analysis bundles the output of one analysis request
type Analysis struct {
	URL     string    `json:"url"`
	Report  SEOReport `json:"report"`
	Summary Summary   `json:"summary"`
}
