package scripting

// System prompts for each generated field.
const (
	ScriptPrompt = "You're a professional YouTube script writer. Write a narration script for a short video " +
		"based on the user's prompt. Return only the words to be spoken, without scene directions or headings."
	TitlePrompt = "You're a professional video title creator. Write one catchy video title based on the user's " +
		"prompt. Return only the title."
	DescriptionPrompt = "You're a professional video description creator. Write a video description based on the " +
		"user's prompt. Return only the description."
	TagsPrompt = "You're a professional video tag creator. Generate 5 single-word tags for a video based on the " +
		"user's prompt. Respond with a JSON array of 5 strings and nothing else."
	ImageQueryPrompt = "You're a professional image search query creator. Write one short stock illustration search " +
		"query based on the user's prompt. Return only the query."
	VideoQueryPrompt = "You're a professional video search query creator. Write one short stock footage search " +
		"query (two or three words) based on the user's prompt. Return only the query."
)
