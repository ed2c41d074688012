package notebook

const (
	LocaleKorean  = "ko"
	LocaleEnglish = "en"
)

const briefingPromptKo = `오늘 업로드된 유튜브 영상들을 분석하여 다음 형식으로 데일리 브리핑을 작성해주세요:

1. **종합 요약** (3-5문장): 오늘의 핵심 내용을 요약
2. **채널별 핵심 인사이트**: 각 영상의 핵심 포인트 3개씩
3. **주요 트렌드**: 영상들에서 공통적으로 나타나는 트렌드나 주제
4. **실행 가능한 인사이트**: 바로 활용할 수 있는 실질적인 팁이나 정보
5. **추천 시청 순서**: 시간이 부족한 경우 우선 시청할 영상 순위

한국어로 작성해주세요.`

const briefingPromptEn = `Analyze the YouTube videos uploaded today and write a daily briefing in the following format:

1. **Overall summary** (3-5 sentences): the key points of the day
2. **Key insights per channel**: three key points for each video
3. **Main trends**: trends or topics shared across the videos
4. **Actionable insights**: practical tips or information that can be used right away
5. **Suggested viewing order**: which videos to watch first when short on time

Write the answer in English.`

// BriefingPrompt returns the composite briefing question for locale.
// Unknown locales fall back to Korean.
func BriefingPrompt(locale string) string {
	if locale == LocaleEnglish {
		return briefingPromptEn
	}
	return briefingPromptKo
}

// TruncationMarker is appended to documents cut at the size limit.
func TruncationMarker(locale string) string {
	if locale == LocaleEnglish {
		return "\n\n... (remaining content omitted)"
	}
	return "\n\n... (이후 내용 생략)"
}

// DefaultQuestion is asked when the caller gives none.
func DefaultQuestion(locale string) string {
	if locale == LocaleEnglish {
		return "What is in this notebook?"
	}
	return "이 노트북에 어떤 내용이 있나요?"
}
