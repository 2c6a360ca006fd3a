package agent

// Fixed user-facing copy. Raw error detail is never shown to the end user;
// every failure path speaks through one of these.

const (
	// GreetingText opens every new session.
	GreetingText = "👋 Hello! I'm your Data Analytics AI Assistant. I specialize in statistics, visualization, business intelligence, and data science. What would you like to explore?"

	clarificationText = "🤔 I couldn't quite catch that. Could you rephrase your question? I'm best with data, statistics, and analytics topics."

	casualText = "😊 Sure! I'm here to help you with data analytics whenever you're ready."

	outOfDomainText = "🤖 I'm designed only for data analytics, statistics, visualization, and BI. Try asking me about regression, SQL, or dashboards instead."

	reuseText = "📊 Here's the chart from your earlier data again."

	errorText = "⚠️ Sorry, something went wrong while fetching the response. Please try again."

	emptyAnswerText = "Here's an insight!"

	uploadTextFormat = "📂 Uploaded file: %s. Parsed %d rows and plotted them as a bar chart (%s vs %s)."
)

// GreetingFollowUps are the starter suggestions shown with the greeting.
var GreetingFollowUps = []string{
	"How do I clean messy datasets?",
	"What's the best way to visualize trends?",
	"How to choose between regression models?",
}

var casualFollowUps = []string{
	"📊 Want me to explain regression analysis?",
	"📈 Curious about sales trend forecasting?",
	"🤖 Should I show how machine learning fits into analytics?",
}

var outOfDomainFollowUps = []string{
	"📊 What's regression analysis?",
	"📈 How to visualize trends?",
	"🛠️ What's data cleaning?",
}

var clarificationFollowUps = []string{
	"Show me an example dataset",
	"What can you help me with?",
	"Explain correlation vs causation",
}

var genericFollowUps = []string{
	"Can you break that down further?",
	"How would I apply this to my data?",
	"What chart fits this best?",
}

var chartFollowUps = []string{
	"Show it as a line chart instead",
	"What stands out in this data?",
	"Summarize the key trend",
}

var errorFollowUps = []string{
	"Try asking again",
	"What's regression analysis?",
	"How to visualize trends?",
}
