package prompts

func ObjectSchema(properties map[string]any, required []string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func StringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func StringArraySchema(minItems, maxItems int) map[string]any {
	s := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	if minItems > 0 {
		s["minItems"] = minItems
	}
	if maxItems > 0 {
		s["maxItems"] = maxItems
	}
	return s
}

func ArraySchema(items map[string]any, minItems, maxItems int) map[string]any {
	s := map[string]any{
		"type":  "array",
		"items": items,
	}
	if minItems > 0 {
		s["minItems"] = minItems
	}
	if maxItems > 0 {
		s["maxItems"] = maxItems
	}
	return s
}

func SummarySchema() map[string]any {
	return ObjectSchema(map[string]any{
		"full":     StringSchema(),
		"bullets":  StringArraySchema(5, 7),
		"insights": StringArraySchema(3, 5),
		"tldr":     StringSchema(),
	}, []string{"full", "bullets", "insights", "tldr"})
}

func SocialPostsSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"twitter":   StringSchema(),
		"linkedin":  StringSchema(),
		"instagram": StringSchema(),
	}, []string{"twitter", "linkedin", "instagram"})
}

func TitlesSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"titles": StringArraySchema(3, 8),
	}, []string{"titles"})
}

func HashtagsSchema() map[string]any {
	return ObjectSchema(map[string]any{
		"hashtags": StringArraySchema(5, 30),
	}, []string{"hashtags"})
}

func KeyMomentsSchema() map[string]any {
	moment := ObjectSchema(map[string]any{
		"timestamp":   StringSchema(),
		"title":       StringSchema(),
		"description": StringSchema(),
	}, []string{"timestamp", "title", "description"})
	return ObjectSchema(map[string]any{
		"moments": ArraySchema(moment, 3, 10),
	}, []string{"moments"})
}

func YouTubeTimestampsSchema() map[string]any {
	chapter := ObjectSchema(map[string]any{
		"timestamp": StringSchema(),
		"title":     StringSchema(),
	}, []string{"timestamp", "title"})
	return ObjectSchema(map[string]any{
		"chapters": ArraySchema(chapter, 2, 20),
	}, []string{"chapters"})
}
