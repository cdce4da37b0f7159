package services

import "github.com/soaringjerry/Jornada/internal/models"

type contentBlock struct {
	Analysis        string
	Tips            []string
	Recommendations []string
}

type profileContent struct {
	insufficient contentBlock
	profiles     map[models.ProfileTag]contentBlock
}

func contentFor(locale string) profileContent {
	if c, ok := diagnosisContent[locale]; ok {
		return c
	}
	return diagnosisContent["pt"]
}

var diagnosisContent = map[string]profileContent{
	"pt": {
		insufficient: contentBlock{
			Analysis: "Não houve respostas suficientes para identificar um perfil. Jogue novamente e responda às situações do tabuleiro.",
			Tips: []string{
				"Leia cada situação com atenção antes de responder",
				"Pense em como você agiria de verdade",
				"Converse com colegas e professores sobre o tema",
			},
			Recommendations: []string{
				"Jogue uma nova partida até o final",
				"Explore os tipos de bullying na área de estudo",
				"Procure um adulto de confiança se tiver dúvidas",
			},
		},
		profiles: map[models.ProfileTag]contentBlock{
			models.ProfileAgressor: {
				Analysis: "Suas escolhas indicam atitudes que podem ferir outras pessoas. Muitas vezes o agressor não percebe o impacto do que faz, mas provocações, exclusões e agressões deixam marcas profundas em quem as sofre.",
				Tips: []string{
					"Antes de agir, pense em como o outro vai se sentir",
					"Brincadeira só é brincadeira quando todos se divertem",
					"Peça desculpas quando perceber que magoou alguém",
					"Use sua influência no grupo para incluir e não para excluir",
				},
				Recommendations: []string{
					"Converse com um orientador ou psicólogo escolar sobre suas emoções",
					"Participe de atividades sobre empatia e comunicação não-violenta",
					"Busque formas saudáveis de lidar com raiva e frustração",
				},
			},
			models.ProfileVitima: {
				Analysis: "Suas respostas sugerem que você tende a sofrer em silêncio diante de situações de bullying. Você não tem culpa do que acontece e merece ser tratado com respeito.",
				Tips: []string{
					"Conte para um adulto de confiança o que está acontecendo",
					"Fique perto de amigos que te apoiam",
					"Guarde provas de mensagens e ataques virtuais",
					"Lembre-se de que a violência diz mais sobre quem agride do que sobre você",
				},
				Recommendations: []string{
					"Procure a coordenação ou a orientação da escola",
					"Converse com sua família sobre como você se sente",
					"Busque apoio psicológico se a situação estiver afetando seu bem-estar",
				},
			},
			models.ProfileVitimaAgressora: {
				Analysis: "Suas escolhas mostram que, ao sofrer uma agressão, você tende a revidar ou descontar em outra pessoa. É uma reação compreensível, mas que mantém a violência circulando e cria novas vítimas.",
				Tips: []string{
					"Quando sentir raiva, respire e se afaste antes de reagir",
					"Procure ajuda em vez de fazer justiça com as próprias mãos",
					"Lembre-se de como você se sentiu ao ser agredido",
				},
				Recommendations: []string{
					"Converse com um orientador sobre as situações que você viveu",
					"Participe de rodas de conversa sobre resolução de conflitos",
					"Busque acompanhamento psicológico para lidar com as agressões sofridas",
				},
			},
			models.ProfileVitimaAgressoraCiclica: {
				Analysis: "Suas respostas indicam um ciclo: ora você é alvo, ora repete a agressão com outras pessoas. Esse ciclo costuma se manter quando a dor de ter sido agredido não é acolhida.",
				Tips: []string{
					"Perceba quando você está repetindo algo que já sofreu",
					"Interrompa o ciclo buscando apoio em vez de revidar",
					"Valorize as relações em que você se sente seguro",
					"Fale sobre o que sente com alguém de confiança",
				},
				Recommendations: []string{
					"Procure acompanhamento psicológico contínuo",
					"Envolva a família e a escola em um plano de apoio",
					"Participe de programas de mediação de conflitos",
				},
			},
			models.ProfileEspectador: {
				Analysis: "Suas escolhas mostram que você percebe o bullying, mas costuma não se envolver. O silêncio de quem assiste é um dos fatores que mais mantêm a violência, e você tem poder para mudar isso.",
				Tips: []string{
					"Mostre apoio à vítima, mesmo com um gesto simples",
					"Não ria nem compartilhe conteúdos que humilham alguém",
					"Chame um adulto quando presenciar uma agressão",
					"Convide quem está sendo excluído para participar",
				},
				Recommendations: []string{
					"Aprenda formas seguras de intervir em situações de bullying",
					"Converse com amigos sobre agir juntos contra a violência",
					"Conheça os canais de denúncia da sua escola",
				},
			},
			models.ProfileInterventor: {
				Analysis: "Parabéns! Suas escolhas mostram que você age para proteger quem sofre bullying e busca soluções sem violência. Atitudes como as suas inspiram outras pessoas e tornam a escola mais segura.",
				Tips: []string{
					"Continue defendendo quem precisa, sempre com segurança",
					"Incentive os colegas a também se posicionarem",
					"Acolha quem sofreu e ajude a buscar apoio",
				},
				Recommendations: []string{
					"Participe de projetos de mediação ou de grêmio estudantil",
					"Compartilhe o que você sabe sobre bullying com a turma",
					"Mantenha o diálogo com professores sobre o clima da escola",
				},
			},
		},
	},
	"en": {
		insufficient: contentBlock{
			Analysis: "There were not enough answers to identify a profile. Play again and answer the situations on the board.",
			Tips: []string{
				"Read each situation carefully before answering",
				"Think about how you would really act",
				"Talk about the topic with classmates and teachers",
			},
			Recommendations: []string{
				"Play a new game through to the end",
				"Explore the bullying types in the study area",
				"Talk to a trusted adult if you have questions",
			},
		},
		profiles: map[models.ProfileTag]contentBlock{
			models.ProfileAgressor: {
				Analysis: "Your choices point to attitudes that can hurt other people. Aggressors often do not notice the impact of what they do, but teasing, exclusion and violence leave deep marks on those who suffer them.",
				Tips: []string{
					"Before acting, think about how the other person will feel",
					"A joke is only a joke when everyone is having fun",
					"Apologize when you notice you have hurt someone",
					"Use your influence in the group to include people, not to exclude them",
				},
				Recommendations: []string{
					"Talk to a school counselor about your emotions",
					"Join activities on empathy and non-violent communication",
					"Find healthy ways to deal with anger and frustration",
				},
			},
			models.ProfileVitima: {
				Analysis: "Your answers suggest you tend to suffer in silence when bullying happens. It is not your fault and you deserve to be treated with respect.",
				Tips: []string{
					"Tell a trusted adult what is happening",
					"Stay close to friends who support you",
					"Keep evidence of messages and online attacks",
					"Remember that violence says more about the aggressor than about you",
				},
				Recommendations: []string{
					"Reach out to the school's coordination or counseling staff",
					"Talk to your family about how you feel",
					"Seek psychological support if this is affecting your wellbeing",
				},
			},
			models.ProfileVitimaAgressora: {
				Analysis: "Your choices show that when you are attacked you tend to strike back or take it out on someone else. It is an understandable reaction, but it keeps violence going and creates new victims.",
				Tips: []string{
					"When you feel angry, breathe and step away before reacting",
					"Ask for help instead of taking matters into your own hands",
					"Remember how you felt when you were attacked",
				},
				Recommendations: []string{
					"Talk to a counselor about what you have been through",
					"Join conversation circles on conflict resolution",
					"Seek psychological support to deal with the aggression you suffered",
				},
			},
			models.ProfileVitimaAgressoraCiclica: {
				Analysis: "Your answers point to a cycle: sometimes you are the target, sometimes you repeat the aggression on others. The cycle tends to continue when the pain of being attacked is not acknowledged.",
				Tips: []string{
					"Notice when you are repeating something you went through",
					"Break the cycle by seeking support instead of retaliating",
					"Value the relationships where you feel safe",
					"Talk about your feelings with someone you trust",
				},
				Recommendations: []string{
					"Seek ongoing psychological support",
					"Involve your family and school in a support plan",
					"Take part in conflict mediation programs",
				},
			},
			models.ProfileEspectador: {
				Analysis: "Your choices show that you notice bullying but usually stay out of it. The silence of bystanders is one of the main things that keeps violence going, and you have the power to change that.",
				Tips: []string{
					"Show support for the victim, even with a small gesture",
					"Do not laugh at or share content that humiliates someone",
					"Call an adult when you witness aggression",
					"Invite whoever is being left out to join in",
				},
				Recommendations: []string{
					"Learn safe ways to step in when bullying happens",
					"Talk with friends about acting together against violence",
					"Find out how to report bullying at your school",
				},
			},
			models.ProfileInterventor: {
				Analysis: "Well done! Your choices show that you act to protect those who are bullied and look for solutions without violence. Attitudes like yours inspire others and make school safer.",
				Tips: []string{
					"Keep standing up for others, always safely",
					"Encourage classmates to speak up too",
					"Support those who were hurt and help them find help",
				},
				Recommendations: []string{
					"Join mediation projects or the student council",
					"Share what you know about bullying with your class",
					"Keep talking with teachers about the school climate",
				},
			},
		},
	},
}
