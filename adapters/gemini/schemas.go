package gemini

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/Naimurthedang/bondly-main/domain/entities"
)

var (
	storybookSchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"title": str("Short story title"),
		"theme": str(""),
		"scenes": array(object(map[string]*jsonschema.Schema{
			"text":        str("One or two simple sentences read aloud to the child"),
			"imagePrompt": str("Description of the scene illustration"),
		}, "text", "imagePrompt")),
	}, "title", "theme", "scenes"))

	lullabySchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"lyrics": str("Four short lines separated by newlines"),
		"mood":   str(""),
	}, "lyrics", "mood"))

	toySchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"id":          str(""),
		"name":        str("A cute name for the toy"),
		"personality": str("One sentence personality"),
		"voiceStyle":  str("How the toy sounds"),
	}, "id", "name", "personality", "voiceStyle"))

	toyInteractionSchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"response":  str("What the toy says, one short sentence"),
		"animation": enum(entities.ToyAnimations),
	}, "response", "animation"))

	friendMessageSchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"text": str("The friend's reply, short and simple"),
		"mood": enum(entities.FriendMoods),
	}, "text", "mood"))

	adviceSchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"summary":         str(""),
		"tips":            array(str("")),
		"bondingActivity": str(""),
		"safetyNote":      str(""),
	}, "summary", "tips", "bondingActivity", "safetyNote"))

	shoppingSchema = newResponseSchema(object(map[string]*jsonschema.Schema{
		"advice": str(""),
		"products": array(object(map[string]*jsonschema.Schema{
			"id":          str(""),
			"name":        str(""),
			"price":       str(""),
			"description": str(""),
			"category":    enum(entities.ProductCategories),
		}, "id", "name", "price", "description", "category")),
	}, "advice", "products"))
)
