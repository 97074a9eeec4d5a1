package search

// searchResponse is the subset of the Custom Search JSON response we read.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
