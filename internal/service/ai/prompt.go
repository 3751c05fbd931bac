package ai

// Templates use schema.FString: single braces are variables.
const matchSystemPrompt = "You write realistic dating profiles for Upendo Connect, a secure, ID-verified dating app for Kenyans. Respond with JSON only, no commentary."

const matchUserPrompt = `Generate {count} realistic dating profiles for Kenyans living in or near {county}, Kenya.
The profiles should be for people of gender: {genders}.
Each profile needs a realistic Kenyan name (first and last), age (19-35), gender (Male, Female or Transgender), a specific town within {county}, and a short, engaging bio (under 150 chars).
Return strictly a JSON array of objects with the keys name, age, gender, town and bio.`
