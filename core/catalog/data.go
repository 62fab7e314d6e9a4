package catalog

// Course content reference data. The media refs point at the hosted video
// player; lesson counts must stay in sync with the lessons table below.

var modules = []Module{
	{
		Number:      1,
		Title:       "Reset Emocional",
		Slug:        "reset-emocional",
		Description: "Aprende a parar de agir pela emoção e descobre a melhor técnica de reconquista amorosa. O primeiro passo para virar o jogo.",
		Duration:    "65 min",
		LessonCount: 8,
	},
	{
		Number:      2,
		Title:       "Mapa da Mente Masculina",
		Slug:        "mapa-mente-masculina",
		Description: "Descobre porque homens se apaixonam pela ausência e como fazer ele sentir a tua falta de forma irresistível.",
		Duration:    "58 min",
		LessonCount: 8,
	},
	{
		Number:      3,
		Title:       "Gatilhos da Memória Emocional",
		Slug:        "gatilhos-memoria-emocional",
		Description: "Como ativar a memória emocional dele e fazê-lo reviver os melhores momentos convosco de forma involuntária.",
		Duration:    "42 min",
		LessonCount: 4,
	},
	{
		Number:      4,
		Title:       "A Frase de 5 Palavras",
		Slug:        "frase-5-palavras",
		Description: "A frase secreta de 5 palavras que ativa o desejo dele instantaneamente. Usa no WhatsApp, ao vivo ou por áudio.",
		Duration:    "48 min",
		LessonCount: 4,
	},
	{
		Number:      5,
		Title:       "Primeiro Contato Estratégico",
		Slug:        "primeiro-contato-estrategico",
		Description: "O que dizer quando ele te procurar (ou como fazer ele dar o primeiro passo). Scripts prontos para cada situação.",
		Duration:    "32 min",
		LessonCount: 3,
	},
	{
		Number:      6,
		Title:       "Domínio da Conversa",
		Slug:        "dominio-conversa",
		Description: "Como manter conversas envolventes sem parecer carente. As 3 frases que ativam o desejo do homem.",
		Duration:    "52 min",
		LessonCount: 6,
	},
	{
		Number:      7,
		Title:       "Conquista Duradoura",
		Slug:        "conquista-duradoura",
		Description: "Os 5 pilares do relacionamento saudável. Como manter a chama acesa e transformar reconquista em amor eterno.",
		Duration:    "55 min",
		LessonCount: 6,
	},
}

var lessons = []Lesson{
	// Módulo 1 - Reset Emocional
	{Module: 1, Number: 1, Title: "Suma que ELE VEM ATRÁS!", MediaRef: "c1CQZVK5lhc"},
	{Module: 1, Number: 2, Title: "NÃO TENHA MEDO de sumir e ELE TE ESQUECER!", MediaRef: "S7_4EebCUcM"},
	{Module: 1, Number: 3, Title: "Os HOMENS SEMPRE VOLTAM Como assim!!", MediaRef: "fsCvIC_FYRM"},
	{Module: 1, Number: 4, Title: "HOMEM precisa de AUSÊNCIA e TEMPO para CORRER ATRÁS", MediaRef: "wPFir0N4HoU"},
	{Module: 1, Number: 5, Title: "Por que quando a MULHER SOME O HOMEM VAI ATRÁS?", MediaRef: "w3gApW6MI3M", IsBonus: true},
	{Module: 1, Number: 6, Title: "Por que NÃO IR ATRÁS é a melhor escolha?", MediaRef: "ODhg0ND4DYc", IsBonus: true},
	{Module: 1, Number: 7, Title: "Não entre em DESESPERO! Senão você PERDE!", MediaRef: "jGjdF7U14EY", IsBonus: true},
	{Module: 1, Number: 8, Title: "MULHER NÃO CORRE ATRÁS DE HOMEM!! APRENDA!", MediaRef: "G37FOnMkW2A", IsBonus: true},

	// Módulo 2 - Mapa da Mente Masculina
	{Module: 2, Number: 1, Title: "OS 5 PRINCÍPIOS DA MENTE MASCULINA!", MediaRef: "Kvmh9RUIfFc"},
	{Module: 2, Number: 2, Title: "COMO CONTROLAR A MENTE DE UM HOMEM?", MediaRef: "pfXXwkNWTk"},
	{Module: 2, Number: 3, Title: "O que o SILÊNCIO faz na CABEÇA de um HOMEM?", MediaRef: "v_d7mmtVh0c"},
	{Module: 2, Number: 4, Title: "CABEÇA DO HOMEM no PÓS TÉRMINO", MediaRef: "knKjXRx0iag"},
	{Module: 2, Number: 5, Title: "OS HOMENS SÃO PREVISÍVEIS!! ATENÇÃO MULHERES!!", MediaRef: "eDMlDbXrBUA", IsBonus: true},
	{Module: 2, Number: 6, Title: "HOMEM GOSTA DE SER PISADO E DESPREZADO?", MediaRef: "DbMmYHv1xkk", IsBonus: true},
	{Module: 2, Number: 7, Title: "LINHA MASCULINA do tempo no PÓS TÉRMINO?", MediaRef: "nz3IEPR7euo", IsBonus: true},
	{Module: 2, Number: 8, Title: "Por que o HOMEM SOME?", MediaRef: "qnw_Olu0rnM", IsBonus: true},

	// Módulo 3 - Gatilhos da Memória Emocional
	{Module: 3, Number: 1, Title: "Como deixar um HOMEM COM MEDO DE PERDER!", MediaRef: "Itat8QDkhhQ"},
	{Module: 3, Number: 2, Title: "APRENDA A REJEITAR PRA ELE VIR ATRAS!", MediaRef: "5LMJop82nBk"},
	{Module: 3, Number: 3, Title: "Postura que faz HOMEM QUERER FEITO DOIDO", MediaRef: "8KD93jjgbBg"},
	{Module: 3, Number: 4, Title: "EU QUERO QUE ELE VOLTE RASTEJANDO!", MediaRef: "TAgC5VAg2_o", IsBonus: true},

	// Módulo 4 - A Frase de 5 Palavras
	{Module: 4, Number: 1, Title: "3 Frases Pra Mexer PROFUNDAMENTE com o Psicológico de um Homem!", MediaRef: "hjVBIwEWO7o"},
	{Module: 4, Number: 2, Title: "A Mensagem que Reconquista ELE Sumiu Diga isso!", MediaRef: "tu2NxuqrbK4"},
	{Module: 4, Number: 3, Title: "ELE SUMIU! Devo MANDAR um 'Oi'?", MediaRef: "hRYhIoNhJqs"},
	{Module: 4, Number: 4, Title: "Ele enviou 'SAUDADES'!!! O QUE RESPONDER?", MediaRef: "h5gUHiS-q7k"},

	// Módulo 5 - Primeiro Contato Estratégico
	{Module: 5, Number: 1, Title: "O EX APARECEU FAÇA CERTO DESSA VEZ!", MediaRef: "6YSO7AYrZI"},
	{Module: 5, Number: 2, Title: "Como se comportar ao se ENCONTRAR com EX?", MediaRef: "sklhMr24Fg4"},
	{Module: 5, Number: 3, Title: "Ele enviou 'SAUDADES'!!! O QUE RESPONDER?", MediaRef: "h5gUHiS-q7k"},

	// Módulo 6 - Domínio da Conversa
	{Module: 6, Number: 1, Title: "WHATSAPP SEJA DIRETA AO FALAR COM HOMEM!", MediaRef: "jkBEYleb4ZM"},
	{Module: 6, Number: 2, Title: "WhatsApp; Mensagem MEDÍOCRE NÃO se RESPONDE!!", MediaRef: "MYPGCmLJFKw"},
	{Module: 6, Number: 3, Title: "VOCÊ sabe se COMUNICAR com um HOMEM?", MediaRef: "eSgYJD9OVSU"},
	{Module: 6, Number: 4, Title: "O que falar no WHATS após um Gelo? Parte 1", MediaRef: "QDFILn1Z-n0", IsBonus: true},
	{Module: 6, Number: 5, Title: "O que falar no SAPP após Gelo? Parte 2", MediaRef: "UL6eqQ3yGFA", IsBonus: true},
	{Module: 6, Number: 6, Title: "NÃO ACEITE qualquer coisa de um HOMEM!!", MediaRef: "s4SzR3LStMc", IsBonus: true},

	// Módulo 7 - Conquista Duradoura
	{Module: 7, Number: 1, Title: "POR QUE NENHUM RELACIONAMENTO MEU VAI PRA FRENTE", MediaRef: "kSf3mrsW5XA"},
	{Module: 7, Number: 2, Title: "Como VIRAR O JOGO no seu RELACIONAMENTO?", MediaRef: "4p3u7AaOsDg"},
	{Module: 7, Number: 3, Title: "Como prender um homem? TÉCNICA INFALÍVEL!", MediaRef: "NXDmCor9bUY"},
	{Module: 7, Number: 4, Title: "COMO MANTER O HOMEM INTERESSADO?", MediaRef: "zbwv5QuANd8"},
	{Module: 7, Number: 5, Title: "NÃO ACEITE qualquer coisa de um HOMEM!!", MediaRef: "s4SzR3LStMc", IsBonus: true},
	{Module: 7, Number: 6, Title: "NÃO DÊ O SEU PODER A UM HOMEM!", MediaRef: "koNd0YLIYkQ", IsBonus: true},
}
