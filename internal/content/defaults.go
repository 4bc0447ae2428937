package content

const defaultLetter = `Dear Love,

Even heroes fall in love...
and somehow, you became my favorite story.

Every moment with you feels like
a page from a comic I never want to end.

You are my greatest adventure,
my sweetest chapter,
and my happiest ending.

Forever yours,
Your Spider ❤️`

// Defaults returns a fresh copy of the compiled-in document. Every field a
// scene renders has a value here.
func Defaults() Document {
	return Document{
		Skate: Skate{
			Image1: "/images/s1.png",
			Image2: "/images/s2.png",
			Text:   "Every superhero has a story. This one is ours.",
		},
		Memories: []Memory{
			{Image: "/images/s1.png", Caption: "The day we met"},
			{Image: "/images/s2.png", Caption: "Our first adventure"},
			{Image: "/images/s3.png", Caption: "Forever tangled together"},
		},
		ComicTexts: []string{
			"You caught me in your web...",
			"And I never wanted to escape.",
			"Every superhero has a story.",
			"This one is ours.",
		},
		Scene2Skate: Gallery{
			Images: []string{"/images/s1.png", "/images/s2.png", "/images/s3.png"},
		},
		Scene4Collage: Collage{
			Images: []string{"/images/s1.png", "/images/s2.png", "/images/s3.png", "/images/web1.png", "/images/web2.png", "/images/bg.png"},
			Captions: []string{"The day we met", "Our first adventure", "Forever tangled", "Connected by fate", "Two hearts, one web", "Our universe"},
		},
		LetterText:         defaultLetter,
		LetterTitle:        "A Letter For You",
		CelebrationMessage: "Yay! Forever starts now ❤️",
		FinalPanel: FinalPanel{
			Panel1: Panel{Text: "Every day, I find myself thinking about you...", Image: "/images/s1.png"},
			Panel2: Panel{Text: "You make even the ordinary feel extraordinary.", Image: "/images/s2.png"},
			Panel3: Panel{Text: "There's something I've been meaning to ask...", Image: "/images/s3.png"},
			Panel4: Panel{Text: "Be my forever person?", Image: "/images/bg.png", Sticker: "heart"},
		},
	}
}
