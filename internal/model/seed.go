package model

// SeedFolderName is the folder created on first run.
const SeedFolderName = "Default folder"

var seedBookmarks = []Bookmark{
	{Label: "Google", URL: "https://www.google.com"},
	{Label: "YouTube", URL: "https://www.youtube.com"},
	{Label: "Facebook - log in or sign up", URL: "https://www.facebook.com"},
	{Label: "Instagram", URL: "https://www.instagram.com"},
	{Label: "WhatsApp | Secure and Reliable Free Private Messaging and Calling", URL: "https://www.whatsapp.com"},
	{Label: "Wikipedia, the free encyclopedia", URL: "https://www.wikipedia.org"},
	{Label: "ChatGPT", URL: "https://chat.openai.com/"},
	{Label: "reddit", URL: "https://www.reddit.com"},
	{Label: "Yahoo | Mail, Weather, Search, Politics, News, Finance, Sports & Videos", URL: "https://www.yahoo.com"},
}

// Seed fills an empty store with the starter folder, pins it and makes it
// current. It reports false and does nothing when folders already exist.
func (s *Store) Seed() bool {
	if len(s.Folders) > 0 {
		return false
	}
	f := NewFolder(SeedFolderName)
	f.Bookmarks = append(f.Bookmarks, seedBookmarks...)
	s.Folders = append(s.Folders, f)
	if !s.IsPinned(SeedFolderName) {
		s.PinnedFolders = append(s.PinnedFolders, SeedFolderName)
	}
	s.CurrentFolder = SeedFolderName
	return true
}
